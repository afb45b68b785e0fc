// pkg/module/option.go
package module

// Kind identifies what kind of value a command-line option accepts.
type Kind int

const (
	// KindNone marks a boolean flag that takes no value.
	KindNone Kind = iota
	// KindString stores the supplied text verbatim.
	KindString
	// KindInt parses the supplied text as an integer with automatic base
	// detection, so hexadecimal literals like 0x1A are accepted.
	KindInt
	// KindFloat parses the supplied text as a floating point number.
	KindFloat
	// KindList appends each supplied value to an ordered sequence.
	KindList
	// KindMap assigns each supplied value under an increasing integer index.
	KindMap
	// KindFile marks the option that collects positional target-file
	// arguments left over after flag parsing.
	KindFile
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// label returns the help-text value label for the kind. File-like kinds
// display as "file", numeric kinds as their own name, everything else as
// the generic "string".
func (k Kind) label() string {
	switch k {
	case KindFile:
		return "file"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Option declares one command-line option contributed by a module type. An
// option may populate several constructor parameters at once: Kwargs maps
// each target parameter name to the value it receives when the flag is a
// bare boolean; for value-taking kinds the parsed command-line text replaces
// the declared value. Options are declared once per module type and never
// mutated.
type Option struct {
	// Kwargs names the constructor parameters this option populates and the
	// value each receives when the option carries no value of its own.
	Kwargs map[string]any

	// Priority resolves conflicting writes to the same parameter name across
	// the whole option surface. Higher wins; ties keep the first writer.
	Priority int

	// Description is the help text for this option.
	Description string

	// Short is an optional single-letter alias.
	Short string

	// Long is the multi-character flag name. An option without a long name
	// never appears in help and is never registered with the parser; it only
	// participates in per-module parameter population, which matters for
	// KindFile funnels.
	Long string

	// Kind selects how a supplied value is coerced before being written.
	Kind Kind

	// TypeLabel overrides the value label shown in help text.
	TypeLabel string
}

// typeLabel returns the declared help label, deriving one from the kind when
// none was supplied.
func (o Option) typeLabel() string {
	if o.TypeLabel != "" {
		return o.TypeLabel
	}
	return o.Kind.label()
}

// Kwarg declares one recognized constructor parameter and its default value.
// Parameters supplied at construction that are not declared here are still
// accepted and kept in the instance's extras mapping.
type Kwarg struct {
	Name        string
	Default     any
	Description string
}

// Dependency binds a collaborator slot on the requesting module to the
// registry name of the module type that fills it.
type Dependency struct {
	// Attr is the slot name the resolved instance is bound to.
	Attr string
	// Module is the registry name of the dependency module type.
	Module string
}

// Display format defaults applied to descriptors that do not declare their
// own. The result format prints a zero-padded offset column followed by the
// description.
const (
	DefaultHeaderFormat = "%s\n"
	DefaultResultFormat = "%.8d      %s\n"
)

func defaultHeader() []string { return []string{"OFFSET      DESCRIPTION"} }
func defaultResult() []string { return []string{"offset", "description"} }

// Descriptor is the immutable per-type metadata a module registers: its
// name, CLI surface, recognized constructor parameters, collaborator
// requirements, and display layout. Descriptors are passed and returned by
// value; instances never mutate them.
type Descriptor struct {
	// Name is the registry key other modules use in Depends entries.
	Name string

	// Title is the human-readable heading used in help and scan output.
	Title string

	// CLI lists the options this module contributes to the merged parser.
	CLI []Option

	// Kwargs lists the recognized constructor parameters and defaults.
	Kwargs []Kwarg

	// Depends lists collaborator modules resolved before construction, in
	// callback fan-out order.
	Depends []Dependency

	// HeaderFormat and ResultFormat are fmt strings for the display
	// collaborator. Header holds the header column values and Result the
	// result attribute names rendered per finding.
	HeaderFormat string
	ResultFormat string
	Header       []string
	Result       []string
}

// withDefaults returns a copy with unset display fields filled in.
func (d Descriptor) withDefaults() Descriptor {
	if d.HeaderFormat == "" {
		d.HeaderFormat = DefaultHeaderFormat
	}
	if d.ResultFormat == "" {
		d.ResultFormat = DefaultResultFormat
	}
	if len(d.Header) == 0 {
		d.Header = defaultHeader()
	}
	if len(d.Result) == 0 {
		d.Result = defaultResult()
	}
	return d
}
