// pkg/module/module.go
package module

import "io"

// Module is one self-contained unit of analysis the orchestrator drives
// through its lifecycle. Concrete modules embed Base, which supplies
// reasonable defaults for every method except Base itself, and register a
// Descriptor plus a Factory with a Registry.
type Module interface {
	// Base exposes the framework-owned state embedded in every module.
	Base() *Base

	// Configure binds the merged constructor parameters to the module's own
	// typed fields. Called once at construction, before Load. A failure is
	// recorded as a module Error and poisons dependents.
	Configure(kw Kwargs) error

	// Load is the one-time setup hook, called at construction time. Failures
	// are recorded, not propagated; the module stays usable but errored.
	Load() error

	// Init runs once per execution immediately before Run. On failure the
	// module's main entry returns false without calling Run.
	Init() error

	// Run is the module's production routine. The flag reports overall
	// success; failures are recorded like Load and Init failures.
	Run() (bool, error)

	// Callback observes every Result produced by modules that declared this
	// module as a dependency. It may annotate the Result or flip its flags.
	// Only cancellation may propagate; other failures are recorded against
	// this module.
	Callback(r *Result) error

	// Validate applies module policy to a Result immediately before the
	// callback fan-out. The default implementation marks it valid.
	Validate(r *Result)
}

// Factory constructs a fresh, unbound module instance. The orchestrator
// calls it at most once per module type per execution.
type Factory func() Module

// Display is the console rendering collaborator. One module owns the
// concrete display; every other module reaches it through its dependency on
// that module.
type Display interface {
	Quiet() bool
	SetQuiet(quiet bool)
	Log() io.Writer
	SetLog(w io.Writer)
	FormatStrings(headerFormat, resultFormat string)
	Header(args ...any)
	Result(args ...any)
	Footer()
}

// DisplayProvider is implemented by the module that owns the display
// collaborator. During binding each module resolves its display from itself
// or from the first dependency that provides one.
type DisplayProvider interface {
	Display() Display
}

// PluginBus is the per-module plugin hook collaborator, invoked at fixed
// lifecycle points. Implementations report their own failures.
type PluginBus interface {
	// LoadPlugins attaches whatever plugins apply to the bound module.
	LoadPlugins()
	// PreScan fires once before the module's Run.
	PreScan()
	// PostScan fires once after a successful Run.
	PostScan()
	// OnResult fires for every Result flowing through the pipeline, after
	// the dependency callbacks and before storage.
	OnResult(r *Result)
}

// PluginBusFactory builds the bus for one module instance.
type PluginBusFactory func(m Module) PluginBus

type noopBus struct{}

func (noopBus) LoadPlugins()       {}
func (noopBus) PreScan()           {}
func (noopBus) PostScan()          {}
func (noopBus) OnResult(r *Result) {}
