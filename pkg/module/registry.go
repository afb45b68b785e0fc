// pkg/module/registry.go
package module

import (
	"github.com/rs/zerolog/log"
)

// Registry holds the known module types in registration order. Ordering
// matters twice: it fixes the merged command-line surface and the execute
// sweep order. Registration happens during package init, so the registry is
// not guarded for concurrent mutation.
type Registry struct {
	order   []string
	entries map[string]registryEntry
}

type registryEntry struct {
	desc    Descriptor
	factory Factory
}

// NewRegistry returns an empty registry, used by tests and by callers that
// assemble an explicit module set instead of the process-wide one.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a module type under its descriptor name. Registering a name
// twice overwrites the previous entry and keeps its original position.
func (r *Registry) Register(desc Descriptor, factory Factory) {
	if desc.Name == "" || factory == nil {
		log.Warn().Str("module", desc.Name).Msg("Ignoring incomplete module registration")
		return
	}
	desc = desc.withDefaults()
	if _, exists := r.entries[desc.Name]; exists {
		log.Warn().Str("module", desc.Name).Msg("Module already registered, overwriting")
	} else {
		r.order = append(r.order, desc.Name)
	}
	r.entries[desc.Name] = registryEntry{desc: desc, factory: factory}
}

// Has reports whether a module type is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Lookup returns the descriptor and factory registered under name.
func (r *Registry) Lookup(name string) (Descriptor, Factory, error) {
	entry, ok := r.entries[name]
	if !ok {
		return Descriptor{}, nil, wrapModule(ErrModuleUnknown, name)
	}
	return entry.desc, entry.factory, nil
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors returns every registered descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].desc)
	}
	return out
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry built-in modules
// register into from their init functions.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a module type to the process-wide registry.
func Register(desc Descriptor, factory Factory) {
	defaultRegistry.Register(desc, factory)
}
