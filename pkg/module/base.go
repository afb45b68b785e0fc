// pkg/module/base.go
package module

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// errorSeparatorWidth is the width of the dashed lines bracketing a stack
// trace written to the diagnostic stream.
const errorSeparatorWidth = 100

// Base carries the framework-owned state of a module instance: its
// descriptor, resolved collaborators, accumulated results and errors, and
// the reporting protocol. Concrete modules embed Base and override the
// lifecycle hooks they care about.
type Base struct {
	self Module
	desc Descriptor

	ctx    context.Context
	logger zerolog.Logger
	diag   io.Writer

	kwargs Kwargs
	extras Kwargs

	enabled    bool
	dependency bool

	deps map[string]Module
	bus  PluginBus

	displayOwner DisplayProvider

	errors  []*Error
	results []*Result
	status  *Status
}

// ModuleBase is the name concrete modules embed Base under. Embedding the
// alias keeps the embedded field name from shadowing the promoted Base
// method, which the Module interface requires.
type ModuleBase = Base

// bind wires a freshly constructed instance to the framework: descriptor,
// merged kwargs with declared defaults applied, resolved dependencies, and
// collaborators. Called exactly once per instance, before Configure.
func (b *Base) bind(inst Module, desc Descriptor, kw Kwargs, deps map[string]Module, asDependency bool, ctx context.Context, bus PluginBus, diag io.Writer) {
	b.self = inst
	b.desc = desc

	if ctx == nil {
		ctx = context.Background()
	}
	b.ctx = ctx
	if bus == nil {
		bus = noopBus{}
	}
	b.bus = bus
	if diag == nil {
		diag = os.Stderr
	}
	b.diag = diag
	b.logger = log.With().Str("module", desc.Name).Logger()

	if kw == nil {
		kw = make(Kwargs)
	}
	declared := make(map[string]bool, len(desc.Kwargs)+1)
	declared["enabled"] = true
	for _, k := range desc.Kwargs {
		declared[k.Name] = true
		if !kw.Has(k.Name) {
			kw[k.Name] = k.Default
		}
	}
	b.kwargs = kw
	b.extras = make(Kwargs)
	for name, v := range kw {
		if !declared[name] {
			b.extras[name] = v
		}
	}

	b.enabled = kw.Bool("enabled")
	b.dependency = asDependency

	if deps == nil {
		deps = make(map[string]Module)
	}
	b.deps = deps

	// The display is owned either by the module itself or by the first
	// declared dependency that provides one.
	if p, ok := inst.(DisplayProvider); ok {
		b.displayOwner = p
	} else {
		for _, d := range desc.Depends {
			if di, ok := deps[d.Attr]; ok {
				if p, ok := di.(DisplayProvider); ok {
					b.displayOwner = p
					break
				}
			}
		}
	}

	b.muffle()
}

// muffle suppresses console output when the instance only exists to satisfy
// another module's dependency. Safe to call before the display exists; the
// framework calls it again once loading completes.
func (b *Base) muffle() {
	if !b.dependency {
		return
	}
	if d := b.display(); d != nil {
		d.SetQuiet(true)
		d.SetLog(nil)
	}
}

// display resolves the module's display collaborator, nil when none is
// reachable yet.
func (b *Base) display() Display {
	if b.displayOwner == nil {
		return nil
	}
	return b.displayOwner.Display()
}

// Base returns the embedded framework state, satisfying the Module
// interface for every embedding type.
func (b *Base) Base() *Base { return b }

// Configure is the default no-op parameter binding.
func (b *Base) Configure(kw Kwargs) error { return nil }

// Load is the default no-op one-time setup.
func (b *Base) Load() error { return nil }

// Init is the default no-op per-execution setup.
func (b *Base) Init() error { return nil }

// Run is the default production routine; it succeeds without producing
// results.
func (b *Base) Run() (bool, error) { return true, nil }

// Callback is the default no-op result observer.
func (b *Base) Callback(r *Result) error { return nil }

// Validate marks the Result valid. Modules override this to apply their own
// acceptance policy.
func (b *Base) Validate(r *Result) { r.Valid = true }

// Name returns the registry name from the descriptor.
func (b *Base) Name() string { return b.desc.Name }

// Title returns the human-readable module title.
func (b *Base) Title() string { return b.desc.Title }

// Descriptor returns the immutable per-type metadata.
func (b *Base) Descriptor() Descriptor { return b.desc }

// Enabled reports whether the module should execute and be part of the
// returned module set.
func (b *Base) Enabled() bool { return b.enabled }

// SetEnabled flips the enabled flag; modules may enable themselves during
// Configure or Load when their activation is not flag-driven.
func (b *Base) SetEnabled(enabled bool) { b.enabled = enabled }

// IsDependency reports whether the instance was constructed to satisfy
// another module's dependency.
func (b *Base) IsDependency() bool { return b.dependency }

// Kwargs returns a copy of the full constructor-parameter set.
func (b *Base) Kwargs() Kwargs { return b.kwargs.clone() }

// Extras returns a copy of the undeclared parameters that were passed
// through at construction.
func (b *Base) Extras() Kwargs { return b.extras.clone() }

// Dependency returns the resolved collaborator bound to the named slot.
func (b *Base) Dependency(attr string) (Module, bool) {
	m, ok := b.deps[attr]
	return m, ok
}

// Context returns the execution context modules must honor in long loops.
func (b *Base) Context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

// Logger returns the module-tagged logger.
func (b *Base) Logger() zerolog.Logger { return b.logger }

// Results returns the stored valid results in submission order.
func (b *Base) Results() []*Result { return b.results }

// Errors returns every recorded error in submission order.
func (b *Base) Errors() []*Error { return b.errors }

// Status returns the progress counters for the current run, nil outside of
// one.
func (b *Base) Status() *Status { return b.status }

// Report drives one Result through the pipeline: module validation, the
// dependency callback fan-out in declared order, the plugin bus, then
// storage, progress derivation and display for results still valid. Only
// cancellation interrupts the fan-out; a failing callback is recorded
// against the callback's own module and the chain continues.
func (b *Base) Report(r *Result) error {
	if r == nil {
		return nil
	}
	b.self.Validate(r)

	for _, dep := range b.desc.Depends {
		inst, ok := b.deps[dep.Attr]
		if !ok {
			continue
		}
		if err := inst.Callback(r); err != nil {
			if IsCancellation(err) {
				return err
			}
			inst.Base().ReportError(NewError(err))
		}
	}

	b.bus.OnResult(r)

	if !r.Valid {
		return nil
	}
	b.results = append(b.results, r)

	// A module that never touched the counters gets automatic progress
	// derived from the result's file position.
	if r.File != nil && b.status != nil && b.status.Total == 0 {
		b.status.Total = r.File.Size()
		b.status.Completed = r.File.Tell() - r.File.Offset()
	}

	if r.Display {
		if d := b.display(); d != nil {
			if vals := b.displayValues(r); len(vals) > 0 {
				d.Result(vals...)
			}
		}
	}
	return nil
}

// displayValues resolves the declared result column names against one
// Result, in declared order.
func (b *Base) displayValues(r *Result) []any {
	vals := make([]any, 0, len(b.desc.Result))
	for _, name := range b.desc.Result {
		v, _ := r.Attr(name)
		vals = append(vals, v)
	}
	return vals
}

// ReportError records a failure against this module. Errors are never
// filtered or dropped. A captured cause is written to the diagnostic stream
// with a stack trace bracketed by separator lines; a bare description gets a
// one-line message.
func (b *Base) ReportError(e *Error) {
	if e == nil {
		return
	}
	e.Module = b.self
	b.errors = append(b.errors, e)

	diag := b.diag
	if diag == nil {
		diag = os.Stderr
	}

	switch {
	case e.Err != nil:
		sep := strings.Repeat("-", errorSeparatorWidth)
		fmt.Fprintf(diag, "\n%s Exception: %v\n", b.desc.Name, e.Err)
		fmt.Fprintf(diag, "%s\n%s%s\n", sep, debug.Stack(), sep)
		b.logger.Error().Err(e.Err).Msg("module error")
	case e.Description != "":
		fmt.Fprintf(diag, "\n%s Error: %s\n\n", b.desc.Name, e.Description)
		b.logger.Error().Str("description", e.Description).Msg("module error")
	default:
		b.logger.Error().Msg("module error")
	}
}

// Header pushes the module's format strings to the display and renders the
// declared header columns. Modules call this at the top of Run.
func (b *Base) Header() {
	d := b.display()
	if d == nil {
		return
	}
	d.FormatStrings(b.desc.HeaderFormat, b.desc.ResultFormat)
	args := make([]any, 0, len(b.desc.Header))
	for _, h := range b.desc.Header {
		args = append(args, h)
	}
	d.Header(args...)
}

// Footer closes the module's display section.
func (b *Base) Footer() {
	if d := b.display(); d != nil {
		d.Footer()
	}
}

// Main drives the per-execution phases: Init, format-string push, plugin
// pre-scan, Run, plugin post-scan. Every failure except cancellation is
// recorded and turns into a false return; cancellation exits immediately and
// is never recorded.
func (b *Base) Main(status *Status) (bool, error) {
	b.status = status

	if err := b.self.Init(); err != nil {
		if IsCancellation(err) {
			return false, err
		}
		b.ReportError(NewError(err))
		return false, nil
	}

	if d := b.display(); d != nil {
		d.FormatStrings(b.desc.HeaderFormat, b.desc.ResultFormat)
	}

	b.bus.PreScan()

	ok, err := b.self.Run()
	if err != nil {
		if IsCancellation(err) {
			return false, err
		}
		b.ReportError(NewError(err))
		return false, nil
	}

	b.bus.PostScan()
	return ok, nil
}
