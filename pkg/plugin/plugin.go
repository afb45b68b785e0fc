// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package plugin extends scan modules without touching their code.
//
// Two extension mechanisms share the same bus:
//
//   - Hooks are compiled-in Go values registered with RegisterHook. They
//     run callbacks around a module's scan and can rewrite results.
//   - Manifests are YAML files dropped into the plugin directory. Each
//     declares rules that annotate, hide, or invalidate results by
//     matching their descriptions.
//
// A Store loads manifests from disk, and a Bus attaches both mechanisms
// to one module instance for the duration of a scan.
package plugin

import (
	"sync"

	"github.com/binsift/binsift/pkg/module"
)

// Hook is a compiled-in plugin. Implementations are registered once at
// startup and consulted for every module instance a scan constructs.
type Hook interface {
	// Name identifies the hook in logs.
	Name() string

	// Applies reports whether the hook wants to attach to m. Hooks that
	// return false are never called for that instance.
	Applies(m module.Module) bool

	// PreScan runs after the module loads, before Run.
	PreScan(m module.Module)

	// PostScan runs after Run returns, regardless of its outcome.
	PostScan(m module.Module)

	// OnResult runs for every result the module reports, after the
	// module's own validation and before the result is stored. The hook
	// may mutate r, including clearing r.Valid.
	OnResult(m module.Module, r *module.Result)
}

var (
	hookMu   sync.RWMutex
	hookReg  []Hook
	hookSeen map[string]bool
)

// RegisterHook adds a hook to the global registry. Registering a second
// hook under the same name replaces the first. Safe for concurrent use.
func RegisterHook(h Hook) {
	if h == nil {
		return
	}
	hookMu.Lock()
	defer hookMu.Unlock()
	if hookSeen == nil {
		hookSeen = make(map[string]bool)
	}
	if hookSeen[h.Name()] {
		for i, existing := range hookReg {
			if existing.Name() == h.Name() {
				hookReg[i] = h
				return
			}
		}
	}
	hookSeen[h.Name()] = true
	hookReg = append(hookReg, h)
}

// registeredHooks returns a snapshot of the registry in registration order.
func registeredHooks() []Hook {
	hookMu.RLock()
	defer hookMu.RUnlock()
	out := make([]Hook, len(hookReg))
	copy(out, hookReg)
	return out
}

// FuncHook adapts plain functions into a Hook. Nil fields are no-ops,
// and a nil AppliesTo attaches to every module.
type FuncHook struct {
	HookName     string
	AppliesTo    func(m module.Module) bool
	OnPreScan    func(m module.Module)
	OnPostScan   func(m module.Module)
	OnScanResult func(m module.Module, r *module.Result)
}

func (f *FuncHook) Name() string { return f.HookName }

func (f *FuncHook) Applies(m module.Module) bool {
	if f.AppliesTo == nil {
		return true
	}
	return f.AppliesTo(m)
}

func (f *FuncHook) PreScan(m module.Module) {
	if f.OnPreScan != nil {
		f.OnPreScan(m)
	}
}

func (f *FuncHook) PostScan(m module.Module) {
	if f.OnPostScan != nil {
		f.OnPostScan(m)
	}
}

func (f *FuncHook) OnResult(m module.Module, r *module.Result) {
	if f.OnScanResult != nil {
		f.OnScanResult(m, r)
	}
}
