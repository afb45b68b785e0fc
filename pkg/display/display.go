// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package display renders scan output: a header per module section, one
// formatted line per result, and an optional plain-text log copy. The
// orchestration core only sees the narrow collaborator contract; this is the
// concrete implementation the general module owns.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// headerWidth is the dashed rule width under section headers.
const headerWidth = 80

// Display writes formatted scan output to the console and, when attached, a
// plain copy to a log writer. Quiet silences the console only; an attached
// log keeps receiving output until it is cleared.
type Display struct {
	out   io.Writer
	log   io.Writer
	quiet bool

	headerFormat string
	resultFormat string

	headerColor *color.Color
	colorize    bool
}

// Option configures a Display.
type Option func(*Display)

// WithWriter redirects console output, stdout by default.
func WithWriter(w io.Writer) Option {
	return func(d *Display) {
		if w != nil {
			d.out = w
		}
	}
}

// WithLog attaches a writer that receives a plain copy of all output.
func WithLog(w io.Writer) Option {
	return func(d *Display) { d.log = w }
}

// WithQuiet starts the display silenced.
func WithQuiet(quiet bool) Option {
	return func(d *Display) { d.quiet = quiet }
}

// New builds a Display. Headers are colorized only when the console writer
// is a real terminal.
func New(opts ...Option) *Display {
	d := &Display{
		out:          os.Stdout,
		headerFormat: "%s\n",
		resultFormat: "%s\n",
		headerColor:  color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(d)
	}
	if f, ok := d.out.(*os.File); ok {
		d.colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return d
}

// Quiet reports whether console output is suppressed.
func (d *Display) Quiet() bool { return d.quiet }

// SetQuiet toggles console suppression. The log copy is unaffected.
func (d *Display) SetQuiet(quiet bool) { d.quiet = quiet }

// Log returns the attached log writer, nil when none.
func (d *Display) Log() io.Writer { return d.log }

// SetLog replaces the log writer; nil detaches it.
func (d *Display) SetLog(w io.Writer) { d.log = w }

// FormatStrings installs the header and result format strings the active
// module renders with.
func (d *Display) FormatStrings(headerFormat, resultFormat string) {
	if headerFormat != "" {
		d.headerFormat = headerFormat
	}
	if resultFormat != "" {
		d.resultFormat = resultFormat
	}
}

// Header renders the module's column header followed by a dashed rule.
func (d *Display) Header(args ...any) {
	plain := fmt.Sprintf(d.headerFormat, args...)
	rule := strings.Repeat("-", headerWidth) + "\n"

	styled := plain
	if d.colorize {
		styled = d.headerColor.Sprint(plain)
	}
	d.emit(plain+rule, styled+rule)
}

// Result renders one finding with the installed result format.
func (d *Display) Result(args ...any) {
	line := fmt.Sprintf(d.resultFormat, args...)
	d.emit(line, line)
}

// Footer closes a module's output section.
func (d *Display) Footer() {
	d.emit("\n", "\n")
}

func (d *Display) emit(plain, styled string) {
	if !d.quiet {
		if d.colorize {
			io.WriteString(d.out, styled)
		} else {
			io.WriteString(d.out, plain)
		}
	}
	if d.log != nil {
		io.WriteString(d.log, plain)
	}
}
