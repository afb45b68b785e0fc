// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/binsift/binsift/pkg/module"
)

// Bus binds the registered hooks and the store's manifests to one module
// instance. It satisfies the orchestrator's plugin collaborator contract,
// so modules never see plugin machinery directly.
type Bus struct {
	store  *Store
	mod    module.Module
	hooks  []Hook
	logger zerolog.Logger
}

// BusFactory returns the factory the orchestrator calls once per module
// instance. A nil store runs hooks only.
func BusFactory(store *Store) module.PluginBusFactory {
	return func(m module.Module) module.PluginBus {
		return &Bus{
			store:  store,
			mod:    m,
			logger: log.With().Str("component", "plugins").Logger(),
		}
	}
}

// LoadPlugins selects the registered hooks that apply to the bound module.
// Manifests are not filtered here; their rules scope themselves per result.
// The factory runs before the module is bound, so the module-tagged logger
// is derived here.
func (b *Bus) LoadPlugins() {
	b.logger = log.With().Str("component", "plugins").Str("module", b.mod.Base().Name()).Logger()
	b.hooks = b.hooks[:0]
	for _, h := range registeredHooks() {
		if h.Applies(b.mod) {
			b.hooks = append(b.hooks, h)
		}
	}
	if len(b.hooks) > 0 {
		b.logger.Debug().Int("hooks", len(b.hooks)).Msg("hooks attached")
	}
}

// PreScan runs every attached hook's PreScan. A panicking hook is logged
// and detached rather than taking the scan down.
func (b *Bus) PreScan() {
	for i, h := range b.hooks {
		b.runHook(i, h, func() { h.PreScan(b.mod) })
	}
	b.compact()
}

// PostScan runs every attached hook's PostScan.
func (b *Bus) PostScan() {
	for i, h := range b.hooks {
		b.runHook(i, h, func() { h.PostScan(b.mod) })
	}
	b.compact()
}

// OnResult gives hooks first say over the result, then applies manifest
// rules. Either side may clear the result's flags; later stages still run
// so every plugin observes every result.
func (b *Bus) OnResult(r *module.Result) {
	for i, h := range b.hooks {
		b.runHook(i, h, func() { h.OnResult(b.mod, r) })
	}
	b.compact()

	if b.store == nil {
		return
	}
	name := b.mod.Base().Name()
	for _, cm := range b.store.Manifests() {
		if n := cm.Apply(name, r); n > 0 {
			b.logger.Debug().
				Str("plugin", cm.Name).
				Int("rules", n).
				Str("description", r.Description).
				Msg("manifest rules applied")
		}
	}
}

// runHook isolates one hook invocation. On panic the hook is marked for
// removal so it cannot fire again this scan.
func (b *Bus) runHook(i int, h Hook, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error().
				Str("hook", h.Name()).
				Err(fmt.Errorf("panic: %v", rec)).
				Msg("hook failed, detaching")
			b.hooks[i] = nil
		}
	}()
	fn()
}

// compact drops hooks detached by runHook.
func (b *Bus) compact() {
	kept := b.hooks[:0]
	for _, h := range b.hooks {
		if h != nil {
			kept = append(kept, h)
		}
	}
	b.hooks = kept
}
