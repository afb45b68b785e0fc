// pkg/module/result.go
package module

// File is the view of a scanned file the pipeline needs: enough to render a
// file column and to derive progress, nothing about how bytes are read.
// Concrete file handling lives outside the orchestration core.
type File interface {
	// Name returns the base name used in display output.
	Name() string
	// Path returns the full path the file was opened from.
	Path() string
	// Size returns the length of the scan window in bytes.
	Size() int64
	// Offset returns the scan window's start position.
	Offset() int64
	// Tell returns the current read position.
	Tell() int64
}

// Result is one finding reported by a module during its run phase. A Result
// travels the whole pipeline as a single mutable value: validation and every
// dependency callback may annotate it or flip its flags before the producing
// module decides to store and display it.
type Result struct {
	// Offset is the finding's byte position inside the scanned file.
	Offset int64

	// Description is the human-readable finding text.
	Description string

	// File is the scanned file the finding belongs to, nil for findings not
	// tied to file contents.
	File File

	// Valid gates storage and display. Once any participant in the callback
	// chain sets it false the Result is discarded after the fan-out
	// completes; the remaining callbacks still see it.
	Valid bool

	// Display gates console output for otherwise valid results.
	Display bool

	// Extract marks the finding as a candidate for extraction by whichever
	// collaborator implements carving.
	Extract bool

	extras map[string]any
}

// NewResult returns a Result with the valid, display and extract flags set,
// the state every finding starts from.
func NewResult() *Result {
	return &Result{Valid: true, Display: true, Extract: true}
}

// SetAttr attaches an ad-hoc attribute to the Result. Producer modules use
// extras to pass data to consumer callbacks without widening the Result
// type.
func (r *Result) SetAttr(name string, value any) {
	if r.extras == nil {
		r.extras = make(map[string]any)
	}
	r.extras[name] = value
}

// Attr resolves a named attribute for display rendering: the canonical field
// names first, then extras. The second return reports whether the name
// resolved at all.
func (r *Result) Attr(name string) (any, bool) {
	switch name {
	case "offset":
		return r.Offset, true
	case "description":
		return r.Description, true
	case "file":
		if r.File == nil {
			return nil, true
		}
		return r.File.Name(), true
	case "valid":
		return r.Valid, true
	case "display":
		return r.Display, true
	case "extract":
		return r.Extract, true
	}
	v, ok := r.extras[name]
	return v, ok
}

// Error is a Result specialization recording a module failure. Errors are
// never filtered: every reported Error lands in the owning module's error
// list regardless of flags.
type Error struct {
	Result

	// Err is the captured failure cause, nil for plain diagnostic errors
	// that only carry a description.
	Err error

	// Module is the reporting module, set by the framework on submission.
	Module Module
}

// NewError wraps a failure cause in an Error with default Result flags.
func NewError(err error) *Error {
	return &Error{Result: *NewResult(), Err: err}
}

// Status tracks scan progress for the module currently holding the
// execution turn. The orchestrator owns the counters and resets them between
// modules; exactly one logical thread touches them, so no locking is needed.
type Status struct {
	Completed int64
	Total     int64
}

// Clear zeroes both counters for the next module.
func (s *Status) Clear() {
	s.Completed = 0
	s.Total = 0
}
