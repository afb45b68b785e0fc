// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnManifestChange(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Load())
	require.Equal(t, 0, store.Len())

	w, err := NewWatcher(store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	// Give the watcher a moment to attach before generating events.
	time.Sleep(100 * time.Millisecond)

	writePluginFile(t, dir, "hide.yaml", hideJpegManifest)
	assert.Eventually(t, func() bool { return store.Len() == 1 },
		3*time.Second, 25*time.Millisecond, "store never picked up the new manifest")

	require.NoError(t, os.Remove(filepath.Join(dir, "hide.yaml")))
	assert.Eventually(t, func() bool { return store.Len() == 0 },
		3*time.Second, 25*time.Millisecond, "store never dropped the removed manifest")

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}

func TestWatcherIgnoresNonManifestFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Load())

	w, err := NewWatcher(store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	writePluginFile(t, dir, "notes.txt", "not a manifest")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, store.Len())
}

func TestWatcherClose(t *testing.T) {
	store := NewStore(t.TempDir())
	w, err := NewWatcher(store)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
