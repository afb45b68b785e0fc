// cmd/binsift/commands/plugins.go
package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/binsift/binsift/pkg/plugin"
	"github.com/binsift/binsift/pkg/settings"
	"github.com/binsift/binsift/pkg/stringutil"
)

func newPluginsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the loaded plugin manifests",
		Long: `List the plugin manifests binsift would load for a scan: result rules
declared in YAML files under the plugin directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				settingsFile, _ := cmd.Flags().GetString("settings")
				cfg, err := settings.Load(settingsFile, nil)
				if err != nil {
					return fmt.Errorf("load settings: %w", err)
				}
				dir = cfg.Plugin.Dir
			}

			store := plugin.NewStore(dir)
			if err := store.Load(); err != nil {
				return fmt.Errorf("load plugin manifests: %w", err)
			}
			printManifests(cmd.OutOrStdout(), dir, store.Manifests())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Plugin manifest directory (default: from settings)")
	return cmd
}

func printManifests(w io.Writer, dir string, manifests []*plugin.CompiledManifest) {
	if len(manifests) == 0 {
		fmt.Fprintf(w, "No plugin manifests found in %s.\n", dir)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Drop a YAML manifest into that directory to rewrite scan results;")
		fmt.Fprintf(w, "see the %s documentation for the manifest schema.\n", cliExecutable)
		return
	}

	fmt.Fprintln(w, modulesHeaderStyle.Render(fmt.Sprintf("Loaded plugins (%d):", len(manifests))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tRULES\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t-------\t-----\t-----------")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			m.Name,
			m.Version,
			len(m.Rules),
			stringutil.Ellipsis(m.Description, 48))
	}
	tw.Flush()
}
