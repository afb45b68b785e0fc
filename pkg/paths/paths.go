package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the config directory for Binsift.
// Order: XDG_CONFIG_HOME/binsift, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "binsift")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Binsift")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "binsift")
}

// DataDir returns the data directory for Binsift.
// Order: XDG_DATA_HOME/binsift, platform-specific fallback.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "binsift")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Binsift")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "binsift")
}

// CacheDir returns the cache directory for Binsift.
// Order: XDG_CACHE_HOME/binsift, platform-specific fallback.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "binsift")
	}
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "Binsift", "Cache")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "binsift")
}
