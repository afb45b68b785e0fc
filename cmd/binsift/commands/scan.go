// cmd/binsift/commands/scan.go
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/plugin"
	"github.com/binsift/binsift/pkg/settings"
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [options] <target>...",
		Short: "Scan target files with the selected analysis modules",
		Long: `Scan runs the selected analysis modules against one or more target files.
The argument list is handed to the modules unparsed, so every option
shown by "binsift scan --help" can be combined freely:

  binsift scan --signature firmware.bin
  binsift scan -B -E --extract --directory=out firmware.bin`,
		// The modules own the option surface; cobra must not eat their flags.
		DisableFlagParsing: true,
		RunE:               runScan,
	}
	return cmd
}

func runScan(cmd *cobra.Command, argv []string) error {
	logger := log.With().Str("component", "cli").Str("command", "scan").Logger()

	cfg, err := settings.Load(settingsPath(argv), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Falling back to default settings")
		cfg = settings.Default()
	}

	store := plugin.NewStore(cfg.Plugin.Dir)
	if err := store.Load(); err != nil {
		logger.Warn().Err(err).Msg("Plugin manifests unavailable")
	}

	mgr := module.NewManager(
		module.WithContext(cmd.Context()),
		module.WithPluginBus(plugin.BusFactory(store)),
	)
	// The general module holds the open targets and the result log.
	defer func() {
		if inst, ok := mgr.Instance("general"); ok {
			if c, ok := inst.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Warn().Err(err).Msg("Closing scan targets")
				}
			}
		}
	}()

	enabled, err := mgr.Execute(argv...)
	if errors.Is(err, module.ErrHelpRequested) {
		fmt.Fprint(cmd.OutOrStdout(), mgr.Help())
		return err
	}
	if err != nil {
		return err
	}
	if len(enabled) == 0 {
		fmt.Fprint(cmd.OutOrStdout(), mgr.Help())
		return errors.New("no analysis modules enabled")
	}

	for _, inst := range enabled {
		base := inst.Base()
		evt := logger.Debug()
		if len(base.Errors()) > 0 {
			evt = logger.Warn()
		}
		evt.Str("module", base.Name()).
			Int("results", len(base.Results())).
			Int("errors", len(base.Errors())).
			Msg("Module finished")
	}
	return nil
}

// settingsPath pulls the --settings value out of the raw argument list so
// the plugin store resolves against the same file the modules are about to
// load themselves.
func settingsPath(argv []string) string {
	for i, arg := range argv {
		if arg == "--settings" && i+1 < len(argv) {
			return argv[i+1]
		}
		if strings.HasPrefix(arg, "--settings=") {
			return strings.TrimPrefix(arg, "--settings=")
		}
	}
	return ""
}
