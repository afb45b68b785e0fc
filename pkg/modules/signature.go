// pkg/modules/signature.go
package modules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/binsift/binsift/pkg/magic"
	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/scanfile"
)

// Signature scans target files for known byte signatures: the built-in
// table, pattern files from the magic.dirs setting, and any files named
// with --magic. It depends on the extractor so matched findings can be
// carved as they are reported.
type Signature struct {
	module.ModuleBase

	magicFiles []string
	table      *magic.Table

	config *General
}

// NewSignature returns an unbound instance for the orchestrator to construct.
func NewSignature() module.Module { return &Signature{} }

func signatureDescriptor() module.Descriptor {
	return module.Descriptor{
		Name:  "signature",
		Title: "Signature Scan",
		CLI: []module.Option{
			{
				Long:        "signature",
				Short:       "B",
				Kind:        module.KindNone,
				Kwargs:      map[string]any{"enabled": true},
				Description: "Scan target files for common file signatures",
			},
			{
				Long:        "magic",
				Short:       "m",
				Kind:        module.KindList,
				TypeLabel:   "file",
				Kwargs:      map[string]any{"magic_files": nil},
				Description: "Load a custom signature pattern file",
			},
		},
		Kwargs: []module.Kwarg{
			{Name: "magic_files", Default: []string(nil), Description: "Extra signature pattern files"},
		},
		Depends: []module.Dependency{
			{Attr: "config", Module: "general"},
			{Attr: "extractor", Module: "extractor"},
		},
	}
}

func (s *Signature) Configure(kw module.Kwargs) error {
	s.magicFiles = kw.Strings("magic_files")
	return nil
}

// Load assembles the signature table from the built-ins, the configured
// pattern directories, and the explicitly named pattern files.
func (s *Signature) Load() error {
	if dep, ok := s.Dependency("config"); ok {
		if g, ok := dep.(*General); ok {
			s.config = g
		}
	}
	if s.config == nil {
		return errors.New("general module unavailable")
	}

	s.table = magic.Builtin()
	for _, dir := range s.config.Settings().Magic.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("signature pattern directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := s.table.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	for _, path := range s.magicFiles {
		if _, err := s.table.LoadFile(path); err != nil {
			return err
		}
	}
	logger := s.Logger()
	logger.Debug().Int("patterns", s.table.Len()).Msg("signature table loaded")
	return nil
}

func (s *Signature) Run() (bool, error) {
	files := s.config.Files()

	if st := s.Status(); st != nil {
		var total int64
		for _, f := range files {
			total += f.Size()
		}
		st.Total = total
	}

	for _, f := range files {
		if err := s.Context().Err(); err != nil {
			return false, err
		}
		logger := s.Logger()
		logger.Info().Str("target", f.Path()).Msg("scanning for signatures")
		s.Header()
		if err := s.scanFile(f); err != nil {
			return false, err
		}
		s.Footer()
	}
	return true, nil
}

// scanFile walks the scan window block by block. The tail of each block is
// carried into the next scan so signatures straddling a block boundary are
// still found; hits that end inside the carried prefix were already
// reported with the previous block.
func (s *Signature) scanFile(f *scanfile.File) error {
	if err := f.Rewind(); err != nil {
		return err
	}

	carryLen := s.table.MaxPatternLen() - 1
	if carryLen < 0 {
		carryLen = 0
	}
	var carry []byte

	for {
		if err := s.Context().Err(); err != nil {
			return err
		}
		block, err := f.NextBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		buf := block
		if len(carry) > 0 {
			buf = append(append(make([]byte, 0, len(carry)+len(block)), carry...), block...)
		}
		base := f.Tell() - int64(len(buf))
		seen := base + int64(len(carry))

		for _, m := range s.table.Scan(buf, base) {
			if m.Offset+int64(m.Size) <= seen {
				continue
			}
			r := module.NewResult()
			r.Offset = m.Offset
			r.Description = m.Description
			r.File = f
			if err := s.Report(r); err != nil {
				return err
			}
		}

		if st := s.Status(); st != nil {
			st.Completed += int64(len(block))
		}

		if carryLen > 0 {
			tail := carryLen
			if len(buf) < tail {
				tail = len(buf)
			}
			carry = append(carry[:0], buf[len(buf)-tail:]...)
		}
	}
	return nil
}

// Validate drops findings no reader should see: empty or unprintable
// descriptions and offsets outside the scan window.
func (s *Signature) Validate(r *module.Result) {
	r.Valid = true
	if strings.TrimSpace(r.Description) == "" {
		r.Valid = false
		return
	}
	for _, c := range []byte(r.Description) {
		if c < ' ' || c > '~' {
			r.Valid = false
			return
		}
	}
	if r.File != nil {
		if r.Offset < r.File.Offset() || r.Offset >= r.File.Offset()+r.File.Size() {
			r.Valid = false
		}
	}
}
