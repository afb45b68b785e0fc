// pkg/modules/entropy.go
package modules

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/binsift/binsift/pkg/module"
	"github.com/binsift/binsift/pkg/scanfile"
)

const (
	// defaultEntropyBlock is the granularity entropy is computed at.
	defaultEntropyBlock = 1024

	// An edge is reported when normalized entropy first climbs above the
	// rising threshold, and again when it falls back below the falling one.
	risingEdgeThreshold  = 0.95
	fallingEdgeThreshold = 0.85
)

// Entropy computes normalized Shannon entropy across each target and
// reports the block offsets where it crosses the edge thresholds. High
// entropy regions mark compressed or encrypted payloads worth a closer
// look.
type Entropy struct {
	module.ModuleBase

	blockSize int64

	config *General
}

// NewEntropy returns an unbound instance for the orchestrator to construct.
func NewEntropy() module.Module { return &Entropy{} }

func entropyDescriptor() module.Descriptor {
	return module.Descriptor{
		Name:  "entropy",
		Title: "Entropy Analysis",
		CLI: []module.Option{
			{
				Long:        "entropy",
				Short:       "E",
				Kind:        module.KindNone,
				Kwargs:      map[string]any{"enabled": true},
				Description: "Calculate file entropy",
			},
		},
		Kwargs: []module.Kwarg{
			{Name: "block", Default: int64(defaultEntropyBlock), Description: "Entropy computation block size"},
		},
		Depends: []module.Dependency{
			{Attr: "config", Module: "general"},
		},
	}
}

func (e *Entropy) Configure(kw module.Kwargs) error {
	e.blockSize = kw.Int("block")
	if e.blockSize <= 0 {
		e.blockSize = defaultEntropyBlock
	}
	return nil
}

func (e *Entropy) Load() error {
	if dep, ok := e.Dependency("config"); ok {
		if g, ok := dep.(*General); ok {
			e.config = g
		}
	}
	if e.config == nil {
		return errors.New("general module unavailable")
	}
	return nil
}

func (e *Entropy) Run() (bool, error) {
	files := e.config.Files()

	if st := e.Status(); st != nil {
		var total int64
		for _, f := range files {
			total += f.Size()
		}
		st.Total = total
	}

	for _, f := range files {
		if err := e.Context().Err(); err != nil {
			return false, err
		}
		logger := e.Logger()
		logger.Info().Str("target", f.Path()).Msg("computing entropy")
		e.Header()
		if err := e.scanFile(f); err != nil {
			return false, err
		}
		e.Footer()
	}
	return true, nil
}

// scanFile reads the window at the entropy block size and reports threshold
// crossings. The target's block size is restored afterward so later modules
// see the file as they configured it.
func (e *Entropy) scanFile(f *scanfile.File) error {
	if err := f.Rewind(); err != nil {
		return err
	}
	prevBlock := f.BlockSize()
	f.SetBlockSize(e.blockSize)
	defer f.SetBlockSize(prevBlock)

	inHigh := false
	for {
		if err := e.Context().Err(); err != nil {
			return err
		}
		block, err := f.NextBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		ent := shannon(block)
		offset := f.Tell() - int64(len(block))

		switch {
		case !inHigh && ent > risingEdgeThreshold:
			inHigh = true
			if err := e.reportEdge(f, offset, ent, "Rising entropy edge (%f)"); err != nil {
				return err
			}
		case inHigh && ent < fallingEdgeThreshold:
			inHigh = false
			if err := e.reportEdge(f, offset, ent, "Falling entropy edge (%f)"); err != nil {
				return err
			}
		}

		if st := e.Status(); st != nil {
			st.Completed += int64(len(block))
		}
	}
	return nil
}

func (e *Entropy) reportEdge(f *scanfile.File, offset int64, ent float64, format string) error {
	r := module.NewResult()
	r.Offset = offset
	r.Description = fmt.Sprintf(format, ent)
	r.File = f
	// Edges mark regions, not carvable content.
	r.Extract = false
	r.SetAttr("entropy", ent)
	return e.Report(r)
}

// shannon returns the Shannon entropy of data normalized to [0, 1].
func shannon(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	total := float64(len(data))
	var ent float64
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		ent -= p * math.Log2(p)
	}
	return ent / 8.0
}
