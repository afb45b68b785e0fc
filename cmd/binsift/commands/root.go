// cmd/binsift/commands/root.go

// Package commands wires the binsift command line: the scan entry point,
// the module and plugin listings, and version output.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/binsift/binsift/pkg/logging"
	"github.com/binsift/binsift/pkg/module"

	// Register the built-in analysis modules with the process-wide registry.
	_ "github.com/binsift/binsift/pkg/modules"
)

const cliExecutable = "binsift"

// Process exit codes. Usage mistakes and graph problems are distinguishable
// from scan-time failures so wrapping scripts can react to each.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitDepFail  = 3
	exitCanceled = 130
)

// NewCommand builds the root command with all subcommands attached.
func NewCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Binsift scans binary files for embedded content",
		Long: `Binsift analyzes firmware images and other opaque binaries: it locates
embedded file signatures, measures entropy, and carves matched regions
out to disk. Analysis modules share one merged option surface, so module
flags combine freely on the scan command.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				return logging.ConfigureGlobal(logLevel)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("settings", "", "Settings file path (default: platform config dir)")

	cmd.AddCommand(newScanCommand())
	cmd.AddCommand(newModulesCommand())
	cmd.AddCommand(newPluginsCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the CLI and maps the outcome to a process exit code.
func Execute(ctx context.Context) int {
	err := NewCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, module.ErrHelpRequested) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cliExecutable, err)
	}
	return exitCode(err)
}

// exitCode classifies an execution error. Help requests end a run early but
// are not failures.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, module.ErrHelpRequested):
		return exitOK
	case errors.Is(err, module.ErrFlagConflict),
		errors.Is(err, module.ErrDependencyCycle),
		errors.Is(err, module.ErrModuleUnknown):
		return exitUsage
	case errors.Is(err, module.ErrDependencyFailed):
		return exitDepFail
	case module.IsCancellation(err):
		return exitCanceled
	default:
		return exitFailure
	}
}
