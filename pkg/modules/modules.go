// pkg/modules/modules.go

// Package modules implements binsift's built-in analysis modules. Each
// module declares its command-line surface and collaborators through a
// descriptor; the orchestrator in pkg/module merges those surfaces, resolves
// the dependency graph, and drives whichever modules the arguments enabled.
package modules

import "github.com/binsift/binsift/pkg/module"

// RegisterBuiltins adds the built-in module set to reg. Order matters:
// general goes first so the execute sweep constructs it directly and its
// display stays audible, and the extractor precedes the scan modules that
// feed it results so their dependency resolution finds it already cached.
func RegisterBuiltins(reg *module.Registry) {
	reg.Register(generalDescriptor(), NewGeneral)
	reg.Register(extractorDescriptor(), NewExtractor)
	reg.Register(signatureDescriptor(), NewSignature)
	reg.Register(entropyDescriptor(), NewEntropy)
}

func init() {
	RegisterBuiltins(module.DefaultRegistry())
}
