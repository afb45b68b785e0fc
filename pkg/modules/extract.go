// pkg/modules/extract.go
package modules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/scanfile"
	"github.com/binsift/binsift/pkg/settings"
)

// extractRule maps a lower-cased description substring to the extension
// carved artifacts are written under.
type extractRule struct {
	pattern   string
	extension string
}

// defaultExtractRules covers the formats the built-in signature table
// reports. Settings add to these, never replace them.
var defaultExtractRules = []extractRule{
	{pattern: "gzip compressed data", extension: "gz"},
	{pattern: "zip archive data", extension: "zip"},
	{pattern: "bzip2 compressed data", extension: "bz2"},
	{pattern: "xz compressed data", extension: "xz"},
	{pattern: "lz4 compressed data", extension: "lz4"},
	{pattern: "zstandard compressed data", extension: "zst"},
	{pattern: "posix tar archive", extension: "tar"},
	{pattern: "cpio archive", extension: "cpio"},
	{pattern: "squashfs filesystem", extension: "squashfs"},
}

// Extractor carves findings out of scan targets. It produces nothing on its
// own; it watches the result stream of every module that depends on it and
// writes matching findings to disk from their reported offset to the end of
// the scan window.
type Extractor struct {
	module.ModuleBase

	dir     string
	maxSize int64
	rules   []extractRule

	config *General
	count  int
}

// NewExtractor returns an unbound instance for the orchestrator to construct.
func NewExtractor() module.Module { return &Extractor{} }

func extractorDescriptor() module.Descriptor {
	return module.Descriptor{
		Name:  "extractor",
		Title: "Extraction",
		CLI: []module.Option{
			{
				Long:        "extract",
				Short:       "e",
				Kind:        module.KindNone,
				Kwargs:      map[string]any{"enabled": true},
				Description: "Extract known file types from scan results",
			},
			{
				Long:        "directory",
				Short:       "C",
				Kind:        module.KindString,
				TypeLabel:   "dir",
				Kwargs:      map[string]any{"directory": ""},
				Description: "Extract files to a custom directory",
			},
			{
				Long:        "max-size",
				Short:       "M",
				Kind:        module.KindInt,
				Kwargs:      map[string]any{"max_size": 0},
				Description: "Limit the size of each extracted file",
			},
		},
		Kwargs: []module.Kwarg{
			{Name: "directory", Default: "", Description: "Extraction output directory"},
			{Name: "max_size", Default: int64(0), Description: "Per-file extraction size cap, zero for no cap"},
		},
		Depends: []module.Dependency{
			{Attr: "config", Module: "general"},
		},
	}
}

func (e *Extractor) Configure(kw module.Kwargs) error {
	e.dir = kw.String("directory")
	e.maxSize = kw.Int("max_size")
	return nil
}

// Load fills unset options from settings and compiles the rule list.
func (e *Extractor) Load() error {
	if dep, ok := e.Dependency("config"); ok {
		if g, ok := dep.(*General); ok {
			e.config = g
		}
	}

	var cfg settings.ExtractSettings
	if e.config != nil {
		cfg = e.config.Settings().Extract
	}
	if e.dir == "" {
		e.dir = cfg.Dir
	}
	if e.dir == "" {
		e.dir = "extractions"
	}
	if e.maxSize == 0 {
		e.maxSize = cfg.MaxSize
	}

	e.rules = append([]extractRule(nil), defaultExtractRules...)
	for _, rule := range cfg.Rules {
		e.rules = append(e.rules, extractRule{
			pattern:   strings.ToLower(rule.Pattern),
			extension: rule.Extension,
		})
	}
	return nil
}

// Callback carves findings whose description matches an extraction rule.
// Only valid results still flagged for extraction are considered, so an
// upstream plugin or callback can veto extraction by clearing the flag.
func (e *Extractor) Callback(r *module.Result) error {
	if !e.Enabled() || !r.Valid || !r.Extract || r.File == nil {
		return nil
	}
	rule, ok := e.match(r.Description)
	if !ok {
		return nil
	}
	sf, ok := r.File.(*scanfile.File)
	if !ok {
		return nil
	}

	path, err := e.carve(sf, r.Offset, rule.extension)
	if err != nil {
		if module.IsCancellation(err) {
			return err
		}
		return fmt.Errorf("extract at offset %d: %w", r.Offset, err)
	}

	r.SetAttr("extracted", path)
	e.count++
	logger := e.Logger()
	logger.Debug().Str("path", path).Int64("offset", r.Offset).Msg("carved finding")
	return nil
}

// match returns the first rule whose pattern occurs in the description.
func (e *Extractor) match(description string) (extractRule, bool) {
	d := strings.ToLower(description)
	for _, rule := range e.rules {
		if strings.Contains(d, rule.pattern) {
			return rule, true
		}
	}
	return extractRule{}, false
}

// carve copies the window from offset to the end of the scan window (capped
// by max_size) into <dir>/<target>.extracted/<HEX-OFFSET>.<ext>. The copy
// reads at absolute offsets so the producer's block cursor is untouched.
func (e *Extractor) carve(f *scanfile.File, offset int64, ext string) (string, error) {
	length := f.Offset() + f.Size() - offset
	if length <= 0 {
		return "", fmt.Errorf("offset %d outside scan window", offset)
	}
	if e.maxSize > 0 && length > e.maxSize {
		length = e.maxSize
	}

	outDir := filepath.Join(e.dir, f.Name()+".extracted")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	// Concurrent binsift processes may extract into the same tree.
	lock := flock.New(filepath.Join(e.dir, ".binsift.lock"))
	if err := lock.Lock(); err != nil {
		return "", err
	}
	defer lock.Unlock()

	outPath := filepath.Join(outDir, fmt.Sprintf("%X.%s", offset, ext))
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	ctx := e.Context()
	buf := make([]byte, scanfile.DefaultBlockSize)
	pos := offset
	remaining := length
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := f.ReadAt(buf[:n], pos)
		if read > 0 {
			if _, werr := out.Write(buf[:read]); werr != nil {
				return "", werr
			}
			pos += int64(read)
			remaining -= int64(read)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}
	return outPath, nil
}

// Count reports how many findings were carved during the run.
func (e *Extractor) Count() int { return e.count }
