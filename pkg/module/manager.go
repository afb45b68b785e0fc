// pkg/module/manager.go
package module

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Manager is the orchestrator: it merges every registered module's options
// into one command-line surface, resolves dependency graphs lazily with
// at-most-once instantiation, and drives enabled modules through their
// lifecycle one at a time.
type Manager struct {
	registry   *Registry
	busFactory PluginBusFactory
	ctx        context.Context
	diag       io.Writer
	logger     zerolog.Logger
	status     *Status

	arguments []string
	args      *argSet

	loaded    map[string]Module
	resolving map[string]bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithContext sets the execution context; cancelling it aborts the run at
// the next phase boundary.
func WithContext(ctx context.Context) ManagerOption {
	return func(m *Manager) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithRegistry points the Manager at an explicit registry instead of the
// process-wide one.
func WithRegistry(reg *Registry) ManagerOption {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithArguments sets the active argument set modules are configured from.
func WithArguments(argv ...string) ManagerOption {
	return func(m *Manager) { m.arguments = argv }
}

// WithPluginBus installs the factory that builds each module's plugin hook
// collaborator.
func WithPluginBus(factory PluginBusFactory) ManagerOption {
	return func(m *Manager) { m.busFactory = factory }
}

// WithDiagnostics redirects the diagnostic stream module errors are written
// to, stderr by default.
func WithDiagnostics(w io.Writer) ManagerOption {
	return func(m *Manager) { m.diag = w }
}

// WithStatus shares an externally owned progress tracker, letting a UI
// observe counters across runs.
func WithStatus(st *Status) ManagerOption {
	return func(m *Manager) {
		if st != nil {
			m.status = st
		}
	}
}

// NewManager returns a Manager over the process-wide registry unless options
// say otherwise. The instance cache lives for the Manager's lifetime; build
// one Manager per scan invocation.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:  DefaultRegistry(),
		ctx:       context.Background(),
		status:    &Status{},
		loaded:    make(map[string]Module),
		resolving: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = log.With().Str("component", "modules").Logger()
	return m
}

// SetArguments replaces the active argument set.
func (m *Manager) SetArguments(argv ...string) {
	m.arguments = argv
	m.args = nil
}

// Instance returns the cached instance for a module name, if one exists.
func (m *Manager) Instance(name string) (Module, bool) {
	inst, ok := m.loaded[name]
	return inst, ok
}

// Status exposes the shared progress counters for the currently running
// module.
func (m *Manager) Status() *Status { return m.status }

// parsed returns the parsed view of the active argument set, building it on
// first use. The parse is rebuilt whenever the argument set changes, so no
// state leaks between argument sets.
func (m *Manager) parsed() (*argSet, error) {
	if m.args == nil {
		s, err := parseArgs(m.registry, m.arguments)
		if err != nil {
			return nil, err
		}
		m.args = s
	}
	return m.args, nil
}

// Execute sweeps every registered module type with the given arguments and
// returns the instances left enabled, in registration order. See
// ExecuteWith.
func (m *Manager) Execute(argv ...string) ([]Module, error) {
	return m.ExecuteWith(nil, argv...)
}

// ExecuteWith is Execute with programmatic keyword arguments merged into the
// argument set (true values become bare flags, everything else --name=value).
// The previous argument set is restored afterward, so one call leaves no
// lasting side effects on shared argument state.
//
// Cancellation and help requests abort the sweep immediately. Any other
// hard failure is scoped to the module that produced it: the sweep
// continues, and the failures come back joined into the returned error
// alongside whatever modules did execute.
func (m *Manager) ExecuteWith(kwargs map[string]any, argv ...string) ([]Module, error) {
	runID := uuid.NewString()
	logger := m.logger.With().Str("run_id", runID).Logger()

	prevArgs := m.arguments
	prevParsed := m.args
	if len(argv) > 0 || len(kwargs) > 0 {
		merged := make([]string, 0, len(argv)+len(kwargs))
		merged = append(merged, argv...)
		merged = append(merged, kwargsToArgv(kwargs)...)
		m.arguments = merged
		m.args = nil
	}
	defer func() {
		m.arguments = prevArgs
		m.args = prevParsed
	}()

	logger.Debug().Strs("arguments", m.arguments).Msg("Executing module sweep")

	var failures []error
	for _, name := range m.registry.Names() {
		if _, err := m.Run(name); err != nil {
			if IsCancellation(err) || errors.Is(err, ErrHelpRequested) {
				return nil, err
			}
			logger.Error().Err(err).Str("module", name).Msg("Module failed")
			failures = append(failures, err)
		}
	}

	enabled := make([]Module, 0, len(m.loaded))
	for _, name := range m.registry.Names() {
		if inst, ok := m.loaded[name]; ok && inst.Base().Enabled() {
			enabled = append(enabled, inst)
		}
	}
	logger.Debug().Int("enabled", len(enabled)).Msg("Module sweep finished")
	return enabled, errors.Join(failures...)
}

// Run returns the cached instance for name, loading and executing it first
// when necessary. Disabled modules are still constructed and cached so later
// dependents find them; only enabled ones have their Main driven.
func (m *Manager) Run(name string) (Module, error) {
	return m.run(name, false)
}

func (m *Manager) run(name string, asDependency bool) (Module, error) {
	if inst, ok := m.loaded[name]; ok {
		return inst, nil
	}
	if m.resolving[name] {
		return nil, fmt.Errorf("%w: via %s", ErrDependencyCycle, name)
	}
	m.resolving[name] = true
	defer delete(m.resolving, name)

	if err := m.ctx.Err(); err != nil {
		return nil, err
	}

	inst, err := m.load(name, asDependency)
	if err != nil {
		return nil, err
	}

	if inst.Base().Enabled() {
		_, err := inst.Base().Main(m.status)
		m.status.Clear()
		if err != nil {
			// Cancellation is the only error Main lets out. The instance is
			// deliberately not cached; the run is over.
			return nil, err
		}
	}

	m.loaded[name] = inst
	return inst, nil
}

// load constructs one module instance: constructor parameters derived from
// the merged command line, dependencies resolved depth-first, then the
// Configure and Load hooks with their catch-and-record contract.
func (m *Manager) load(name string, asDependency bool) (Module, error) {
	desc, factory, err := m.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	s, err := m.parsed()
	if err != nil {
		return nil, err
	}
	kw, err := s.kwargsFor(desc)
	if err != nil {
		return nil, wrapModule(err, name)
	}

	deps, err := m.dependencies(desc)
	if err != nil {
		return nil, err
	}

	inst := factory()
	if inst == nil {
		return nil, fmt.Errorf("module %s: factory returned nil", name)
	}
	base := inst.Base()

	var bus PluginBus
	if m.busFactory != nil {
		bus = m.busFactory(inst)
	}
	base.bind(inst, desc, kw, deps, asDependency, m.ctx, bus, m.diag)

	if err := inst.Configure(base.Kwargs()); err != nil {
		if IsCancellation(err) {
			return nil, err
		}
		base.ReportError(NewError(err))
	}
	if err := inst.Load(); err != nil {
		if IsCancellation(err) {
			return nil, err
		}
		base.ReportError(NewError(err))
	}

	// A dependency module that created its display during Load still needs
	// its output suppressed.
	base.muffle()
	base.bus.LoadPlugins()

	return inst, nil
}

// dependencies resolves a descriptor's collaborators in declared order:
// self-dependencies are elided, unregistered names are warned about and
// skipped, unresolved modules are run first, and a dependency carrying
// recorded errors fails the whole resolution so the requesting module is
// never constructed.
func (m *Manager) dependencies(desc Descriptor) (map[string]Module, error) {
	deps := make(map[string]Module, len(desc.Depends))
	for _, dep := range desc.Depends {
		if dep.Module == desc.Name {
			continue
		}
		if !m.registry.Has(dep.Module) {
			m.logger.Warn().
				Str("module", desc.Name).
				Str("dependency", dep.Module).
				Msg("Dependency is not registered, skipping")
			continue
		}

		inst, ok := m.loaded[dep.Module]
		if !ok {
			resolved, err := m.run(dep.Module, true)
			if err != nil {
				return nil, err
			}
			inst = resolved
		}

		if len(inst.Base().Errors()) > 0 {
			return nil, fmt.Errorf("%w: %s required by %s", ErrDependencyFailed, dep.Module, desc.Name)
		}
		deps[dep.Attr] = inst
	}
	return deps, nil
}
