// pkg/modules/general.go
package modules

import (
	"fmt"
	"os"

	"github.com/binsift/binsift/pkg/display"
	"github.com/binsift/binsift/pkg/logging"
	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/scanfile"
	"github.com/binsift/binsift/pkg/settings"
)

// General owns the cross-cutting scan state: the opened target files, the
// merged settings, and the console display. It contributes the shared
// command-line options and never enables itself; it exists purely as the
// dependency every analysis module resolves first.
type General struct {
	module.ModuleBase

	targets      []string
	offset       int64
	length       int64
	block        int64
	logPath      string
	quiet        bool
	verbose      bool
	settingsPath string

	cfg     settings.Settings
	files   []*scanfile.File
	console module.Display
	logFile *os.File
}

// NewGeneral returns an unbound instance for the orchestrator to construct.
func NewGeneral() module.Module { return &General{} }

func generalDescriptor() module.Descriptor {
	return module.Descriptor{
		Name:  "general",
		Title: "General",
		CLI: []module.Option{
			{
				// Collects the positional file arguments; never a flag.
				Kind:   module.KindFile,
				Kwargs: map[string]any{"files": nil},
			},
			{
				Long:        "length",
				Short:       "l",
				Kind:        module.KindInt,
				Kwargs:      map[string]any{"length": 0},
				Description: "Number of bytes to scan",
			},
			{
				Long:        "offset",
				Short:       "o",
				Kind:        module.KindInt,
				Kwargs:      map[string]any{"offset": 0},
				Description: "Start scan at this file offset",
			},
			{
				Long:        "block",
				Short:       "K",
				Kind:        module.KindInt,
				Kwargs:      map[string]any{"block": 0},
				Description: "Set file block size",
			},
			{
				Long:        "log",
				Short:       "f",
				Kind:        module.KindString,
				TypeLabel:   "file",
				Kwargs:      map[string]any{"log_file": ""},
				Description: "Log results to file",
			},
			{
				Long:        "quiet",
				Short:       "q",
				Kind:        module.KindNone,
				Kwargs:      map[string]any{"quiet": true},
				Description: "Suppress output to stdout",
			},
			{
				Long:        "verbose",
				Short:       "v",
				Kind:        module.KindNone,
				Kwargs:      map[string]any{"verbose": true},
				Description: "Enable verbose output",
			},
			{
				Long:        "settings",
				Kind:        module.KindString,
				TypeLabel:   "file",
				Kwargs:      map[string]any{"settings_file": ""},
				Description: "Load settings from a custom file",
			},
		},
		Kwargs: []module.Kwarg{
			{Name: "files", Default: []string(nil), Description: "Target files to scan"},
			{Name: "length", Default: int64(0), Description: "Number of bytes to scan"},
			{Name: "offset", Default: int64(0), Description: "Scan window start offset"},
			{Name: "block", Default: int64(0), Description: "Read block size override"},
			{Name: "log_file", Default: "", Description: "Plain-text result log path"},
			{Name: "quiet", Default: false, Description: "Suppress console output"},
			{Name: "verbose", Default: false, Description: "Verbose logging"},
			{Name: "settings_file", Default: "", Description: "Settings file path"},
		},
	}
}

func (g *General) Configure(kw module.Kwargs) error {
	g.targets = kw.Strings("files")
	g.offset = kw.Int("offset")
	g.length = kw.Int("length")
	g.block = kw.Int("block")
	g.logPath = kw.String("log_file")
	g.quiet = kw.Bool("quiet")
	g.verbose = kw.Bool("verbose")
	g.settingsPath = kw.String("settings_file")
	return nil
}

// Load merges settings, configures global logging, builds the display, and
// opens every target file. A target that cannot be opened is recorded as a
// module error, and modules depending on this one then refuse to load.
func (g *General) Load() error {
	cfg, err := settings.Load(g.settingsPath, nil)
	if err != nil {
		return err
	}
	g.cfg = cfg

	if err := logging.ConfigureGlobal(logging.ResolveLevel(cfg.Log.Level, g.verbose)); err != nil {
		return err
	}

	opts := []display.Option{display.WithQuiet(g.quiet)}
	if g.logPath != "" {
		f, err := os.Create(g.logPath)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		g.logFile = f
		opts = append(opts, display.WithLog(f))
	}
	g.console = display.New(opts...)

	for _, path := range g.targets {
		f, err := scanfile.Open(path, g.offset, g.length)
		if err != nil {
			e := module.NewError(nil)
			e.Description = fmt.Sprintf("cannot open %s: %v", path, err)
			g.ReportError(e)
			continue
		}
		if g.block > 0 {
			f.SetBlockSize(g.block)
		}
		g.files = append(g.files, f)
	}
	return nil
}

// Display exposes the console collaborator to dependent modules.
func (g *General) Display() module.Display { return g.console }

// Files returns the opened scan targets in command-line order.
func (g *General) Files() []*scanfile.File { return g.files }

// Settings returns the merged configuration.
func (g *General) Settings() settings.Settings { return g.cfg }

// Close releases the opened targets and the result log.
func (g *General) Close() error {
	var first error
	for _, f := range g.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	if g.logFile != nil {
		if err := g.logFile.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
