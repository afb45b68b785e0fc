// pkg/module/errors.go
package module

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrModuleUnknown indicates a requested module name is not registered.
	ErrModuleUnknown = errors.New("unknown module")

	// ErrDependencyFailed indicates a resolved dependency carries recorded
	// errors, which is fatal to loading the requesting module.
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrDependencyCycle indicates the declared dependency graph loops back
	// on itself beyond a plain self-dependency.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrFlagConflict indicates two modules declared the same option name on
	// the merged command-line surface.
	ErrFlagConflict = errors.New("conflicting command line option")

	// ErrHelpRequested surfaces a -h/--help token found while parsing module
	// options, so the caller can render help instead of scanning.
	ErrHelpRequested = errors.New("help requested")
)

// wrapModule annotates err with the module name it concerns.
func wrapModule(err error, name string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("module %s: %w", name, err)
}

// IsCancellation reports whether err is the run-cancellation signal. Every
// catch-and-record boundary in the lifecycle checks this first: cancellation
// propagates unmodified instead of being converted into a recorded Error.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
