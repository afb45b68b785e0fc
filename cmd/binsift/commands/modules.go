// cmd/binsift/commands/modules.go
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/stringutil"
)

var modulesHeaderStyle = lipgloss.NewStyle().Bold(true)

func newModulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the registered analysis modules",
		Long: `List every registered analysis module together with the command line
options it contributes to the scan surface and the modules it depends on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printModules(cmd.OutOrStdout(), module.DefaultRegistry().Descriptors())
			return nil
		},
	}
	return cmd
}

func printModules(w io.Writer, descs []module.Descriptor) {
	fmt.Fprintln(w, modulesHeaderStyle.Render(fmt.Sprintf("Registered modules (%d):", len(descs))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tOPTIONS\tDEPENDS")
	fmt.Fprintln(tw, "----\t-----\t-------\t-------")
	for _, d := range descs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			d.Name,
			stringutil.Ellipsis(d.Title, 28),
			stringutil.Ellipsis(moduleFlags(d), 44),
			dependsList(d))
	}
	tw.Flush()
}

// moduleFlags renders the long flags a module contributes, skipping the
// hidden funnel options that have no flag name.
func moduleFlags(d module.Descriptor) string {
	var flags []string
	for _, opt := range d.CLI {
		if opt.Long == "" {
			continue
		}
		flags = append(flags, "--"+opt.Long)
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ", ")
}

func dependsList(d module.Descriptor) string {
	if len(d.Depends) == 0 {
		return "-"
	}
	var names []string
	for _, dep := range d.Depends {
		names = append(names, dep.Module)
	}
	return strings.Join(names, ", ")
}
