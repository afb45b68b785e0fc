// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watcher reloads a Store when manifest files in its directory change,
// so long-lived processes pick up plugin edits without a restart.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher

	// debounceDelay coalesces rapid successive writes into one reload.
	debounceDelay time.Duration

	logger zerolog.Logger

	// mu protects the debounce timer
	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher over the store's directory. The default
// debounce delay is 100ms.
func NewWatcher(store *Store) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		store:         store,
		watcher:       watcher,
		debounceDelay: 100 * time.Millisecond,
		logger:        log.With().Str("component", "plugins.watcher").Logger(),
	}, nil
}

// Start blocks watching the plugin directory until ctx is cancelled.
// Run it in its own goroutine:
//
//	go watcher.Start(ctx)
//
// Writes, creations, removals, and renames of manifest files all schedule
// a debounced Store.Reload.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.store.Dir()); err != nil {
		w.logger.Error().Err(err).Str("dir", w.store.Dir()).Msg("failed to watch plugin directory")
		return err
	}

	w.logger.Debug().
		Str("dir", w.store.Dir()).
		Dur("debounce", w.debounceDelay).
		Msg("watching plugin directory")

	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("error closing watcher")
		}
	}()

	const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isManifestFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&reloadOps != 0 {
				w.logger.Debug().
					Str("op", event.Op.String()).
					Str("file", event.Name).
					Msg("plugin manifest changed")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("plugin watcher error")
		}
	}
}

// scheduleReload resets the debounce timer; the reload fires once the
// directory has been quiet for the full delay.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		reloaded, err := w.store.Reload()
		switch {
		case err != nil:
			w.logger.Error().Err(err).Msg("failed to reload plugin manifests")
		case reloaded:
			w.logger.Info().Int("manifests", w.store.Len()).Msg("plugin manifests reloaded")
		}
	})
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
