// pkg/settings/settings.go

// Package settings loads binsift's layered configuration: hardcoded
// defaults, then an optional YAML settings file, then command-line flags.
// Higher layers override lower ones.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/binsift/binsift/pkg/paths"
)

var validate = validator.New()

// Settings is the merged configuration consumed across the toolkit.
type Settings struct {
	Log     LogSettings     `koanf:"log"`
	Magic   MagicSettings   `koanf:"magic"`
	Plugin  PluginSettings  `koanf:"plugin"`
	Extract ExtractSettings `koanf:"extract"`
	Display DisplaySettings `koanf:"display"`
}

// LogSettings controls diagnostic logging.
type LogSettings struct {
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
}

// MagicSettings points at extra signature pattern files loaded alongside the
// built-in table.
type MagicSettings struct {
	Dirs []string `koanf:"dirs"`
}

// PluginSettings locates the plugin manifest directory.
type PluginSettings struct {
	Dir string `koanf:"dir"`
}

// ExtractSettings configures the extraction module.
type ExtractSettings struct {
	Dir     string        `koanf:"dir"`
	MaxSize int64         `koanf:"max_size" validate:"min=0"`
	Rules   []ExtractRule `koanf:"rules" validate:"dive"`
}

// ExtractRule maps a result description substring to the file extension
// carved artifacts are stored under.
type ExtractRule struct {
	Pattern   string `koanf:"pattern" validate:"required"`
	Extension string `koanf:"extension" validate:"required"`
}

// DisplaySettings controls console rendering.
type DisplaySettings struct {
	Width int `koanf:"width" validate:"min=0"`
}

// Default returns the baseline configuration when no other source overrides
// it.
func Default() Settings {
	return Settings{
		Log: LogSettings{
			Level: "error",
		},
		Plugin: PluginSettings{
			Dir: filepath.Join(paths.ConfigDir(), "plugins"),
		},
		Extract: ExtractSettings{
			Dir:     "extractions",
			MaxSize: 0,
		},
		Display: DisplaySettings{
			Width: 80,
		},
	}
}

// defaultAsMap converts the default Settings to a map for koanf's confmap
// provider, so every key is known before the higher layers load.
func defaultAsMap() map[string]interface{} {
	def := Default()
	return map[string]interface{}{
		"log.level":        def.Log.Level,
		"magic.dirs":       def.Magic.Dirs,
		"plugin.dir":       def.Plugin.Dir,
		"extract.dir":      def.Extract.Dir,
		"extract.max_size": def.Extract.MaxSize,
		"display.width":    def.Display.Width,
	}
}

// DefaultPath returns the settings file location used when the caller does
// not name one. The file is optional.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), "settings.yaml")
}

// Load builds the merged Settings: defaults, then the YAML file at path (or
// DefaultPath when empty; a missing file is skipped silently), then any
// supplied flags. Flag names map to keys with dashes replaced by dots, so
// --log-level overrides log.level.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultAsMap(), "."), nil); err != nil {
		return Settings{}, fmt.Errorf("load default settings: %w", err)
	}

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("load settings file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("check settings file %s: %w", path, err)
	}

	if flags != nil {
		p := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, interface{}) {
			return strings.ReplaceAll(key, "-", "."), value
		})
		if err := k.Load(p, nil); err != nil {
			return Settings{}, fmt.Errorf("load settings flags: %w", err)
		}
	}

	var cfg Settings
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
