// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/binsift/binsift/pkg/version"
)

// Store holds the compiled manifests from one plugin directory. A broken
// manifest is logged and skipped so one bad file never blocks a scan.
// Safe for concurrent use; the watcher reloads it while scans read it.
type Store struct {
	dir    string
	logger zerolog.Logger

	mu        sync.RWMutex
	manifests []*CompiledManifest
	digest    string
}

// NewStore returns an empty store over dir. Call Load before use; a
// missing or empty directory loads as zero manifests.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: log.With().Str("component", "plugins").Logger(),
	}
}

// Dir returns the directory the store loads from.
func (s *Store) Dir() string { return s.dir }

// Load reads every *.yaml / *.yml file in the store directory and swaps
// the compiled set in. Files that fail to parse, validate, or satisfy
// their version constraint are skipped with a warning.
func (s *Store) Load() error {
	_, err := s.load(false)
	return err
}

// Reload is Load, except it keeps the current set when the directory
// contents are byte-identical to the last load. It reports whether a
// reload happened.
func (s *Store) Reload() (bool, error) {
	return s.load(true)
}

func (s *Store) load(skipUnchanged bool) (bool, error) {
	if s.dir == "" {
		s.swap(nil, "")
		return false, nil
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		s.swap(nil, "")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read plugin directory %s: %w", s.dir, err)
	}

	type rawFile struct {
		path string
		data []byte
	}
	var files []rawFile
	digest := sha256.New()
	for _, entry := range entries {
		if entry.IsDir() || !isManifestFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable plugin manifest")
			continue
		}
		digest.Write([]byte(entry.Name()))
		digest.Write(data)
		files = append(files, rawFile{path: path, data: data})
	}
	sum := hex.EncodeToString(digest.Sum(nil))

	if skipUnchanged {
		s.mu.RLock()
		unchanged := sum == s.digest
		s.mu.RUnlock()
		if unchanged {
			return false, nil
		}
	}

	manifests := make([]*CompiledManifest, 0, len(files))
	for _, f := range files {
		cm, err := parseManifest(f.path, f.data)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", f.path).Msg("skipping plugin manifest")
			continue
		}
		if cm == nil {
			continue
		}
		manifests = append(manifests, cm)
	}

	s.swap(manifests, sum)
	s.logger.Debug().Int("manifests", len(manifests)).Str("dir", s.dir).Msg("plugin manifests loaded")
	return true, nil
}

// parseManifest turns one manifest file into its compiled form. A nil
// manifest with nil error means the plugin opted out via its version
// constraint.
func parseManifest(path string, data []byte) (*CompiledManifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.Path = path
	m.LoadedAt = time.Now()

	ok, err := version.Satisfies(m.Requires)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if !ok {
		log.Warn().
			Str("plugin", m.Name).
			Str("requires", m.Requires).
			Str("running", version.Version).
			Msg("plugin requires a different binsift version, skipping")
		return nil, nil
	}

	return Compile(m)
}

func isManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func (s *Store) swap(manifests []*CompiledManifest, digest string) {
	s.mu.Lock()
	s.manifests = manifests
	s.digest = digest
	s.mu.Unlock()
}

// Manifests returns a snapshot of the compiled set in directory order.
func (s *Store) Manifests() []*CompiledManifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*CompiledManifest, len(s.manifests))
	copy(out, s.manifests)
	return out
}

// Len reports how many manifests are loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manifests)
}
