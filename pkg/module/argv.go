// pkg/module/argv.go
package module

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// argSet is one parsed view of the command line: the merged flag set built
// from every registered module's options, plus the leftover positional
// tokens. Positionals are never rejected at this layer; they are assumed to
// be target files and funneled to whichever module declares a file-kind
// option.
type argSet struct {
	fs      *pflag.FlagSet
	targets []string
}

// buildFlagSet merges every registered module's long-flag options into one
// fresh flag set. Options without a long name are skipped here; they never
// reach the parser. A long or short name declared by two different modules
// is a configuration error.
func buildFlagSet(reg *Registry) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet("modules", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	longs := make(map[string]string)
	shorts := make(map[string]string)
	for _, desc := range reg.Descriptors() {
		for _, opt := range desc.CLI {
			if opt.Long == "" {
				continue
			}
			if owner, dup := longs[opt.Long]; dup {
				return nil, fmt.Errorf("%w: --%s declared by both %s and %s", ErrFlagConflict, opt.Long, owner, desc.Name)
			}
			longs[opt.Long] = desc.Name
			if opt.Short != "" {
				if owner, dup := shorts[opt.Short]; dup {
					return nil, fmt.Errorf("%w: -%s declared by both %s and %s", ErrFlagConflict, opt.Short, owner, desc.Name)
				}
				shorts[opt.Short] = desc.Name
			}
			switch opt.Kind {
			case KindNone:
				fs.BoolP(opt.Long, opt.Short, false, opt.Description)
			case KindList, KindMap:
				fs.StringArrayP(opt.Long, opt.Short, nil, opt.Description)
			default:
				fs.StringP(opt.Long, opt.Short, "", opt.Description)
			}
		}
	}
	return fs, nil
}

// parseArgs builds the merged flag set and parses argv against it.
func parseArgs(reg *Registry, argv []string) (*argSet, error) {
	fs, err := buildFlagSet(reg)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelpRequested
		}
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	return &argSet{fs: fs, targets: fs.Args()}, nil
}

// kwargsFor derives one module's constructor parameters from the parsed
// command line. Only the module's own options are consulted. Conflicting
// writes to the same parameter are settled by option priority, higher wins
// and ties keep the first writer. If nothing enabled the module it stays
// disabled.
func (s *argSet) kwargsFor(desc Descriptor) (Kwargs, error) {
	kw := make(Kwargs)
	last := make(map[string]int)

	for _, opt := range desc.CLI {
		if opt.Kind == KindFile {
			// File-kind options receive the positional targets whether or
			// not they carry a long flag.
			for name := range opt.Kwargs {
				targets := make([]string, len(s.targets))
				copy(targets, s.targets)
				kw[name] = targets
			}
			continue
		}
		if opt.Long == "" {
			continue
		}
		f := s.fs.Lookup(opt.Long)
		if f == nil || !f.Changed {
			continue
		}

		// Coerce the supplied value once, before the per-parameter priority
		// bookkeeping. Boolean flags forced back to false and explicitly
		// empty values count as not supplied.
		var value any
		switch opt.Kind {
		case KindNone:
			if f.Value.String() != "true" {
				continue
			}
		case KindList, KindMap:
			vals, _ := s.fs.GetStringArray(opt.Long)
			elems := make([]string, 0, len(vals))
			for _, v := range vals {
				if v != "" {
					elems = append(elems, v)
				}
			}
			if len(elems) == 0 {
				continue
			}
			value = elems
		case KindInt:
			raw := f.Value.String()
			if raw == "" {
				continue
			}
			n, err := strconv.ParseInt(raw, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("option --%s: invalid integer %q", opt.Long, raw)
			}
			value = n
		case KindFloat:
			raw := f.Value.String()
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("option --%s: invalid number %q", opt.Long, raw)
			}
			value = v
		default:
			raw := f.Value.String()
			if raw == "" {
				continue
			}
			value = raw
		}

		for name, declared := range opt.Kwargs {
			if prev, seen := last[name]; seen && opt.Priority <= prev {
				continue
			}
			last[name] = opt.Priority

			switch opt.Kind {
			case KindNone:
				kw[name] = declared
			case KindList:
				kw[name] = append([]string(nil), value.([]string)...)
			case KindMap:
				mp := make(map[int]string)
				for _, raw := range value.([]string) {
					mp[len(mp)] = raw
				}
				kw[name] = mp
			default:
				kw[name] = value
			}
		}
	}

	if !kw.Has("enabled") {
		kw["enabled"] = false
	}
	return kw, nil
}

// kwargsToArgv translates programmatic keyword arguments into flag tokens:
// true becomes --name, valued entries become --name=value, false and nil
// are dropped. Underscores in names map to dashes so callers can use plain
// identifiers.
func kwargsToArgv(kwargs map[string]any) []string {
	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		flag := strings.ReplaceAll(name, "_", "-")
		switch v := kwargs[name].(type) {
		case nil:
		case bool:
			if v {
				out = append(out, "--"+flag)
			}
		default:
			out = append(out, fmt.Sprintf("--%s=%v", flag, v))
		}
	}
	return out
}
