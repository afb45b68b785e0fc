// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayRendersHeaderResultFooter(t *testing.T) {
	out := &bytes.Buffer{}
	logBuf := &bytes.Buffer{}
	d := New(WithWriter(out), WithLog(logBuf))
	d.FormatStrings("%s\n", "%.8d      %s\n")

	d.Header("OFFSET      DESCRIPTION")
	d.Result(int64(0), "gzip compressed data")
	d.Footer()

	text := out.String()
	assert.Contains(t, text, "OFFSET      DESCRIPTION\n")
	assert.Contains(t, text, strings.Repeat("-", 80)+"\n")
	assert.Contains(t, text, "00000000      gzip compressed data\n")
	assert.True(t, strings.HasSuffix(text, "\n\n"), "the footer closes the section with a blank line")

	assert.Equal(t, text, logBuf.String(), "the log receives a plain copy of everything")
}

func TestDisplayQuietSilencesConsoleOnly(t *testing.T) {
	out := &bytes.Buffer{}
	logBuf := &bytes.Buffer{}
	d := New(WithWriter(out), WithLog(logBuf), WithQuiet(true))

	d.Result("suppressed")
	assert.Empty(t, out.String())
	assert.Equal(t, "suppressed\n", logBuf.String())

	d.SetQuiet(false)
	d.Result("audible")
	assert.Equal(t, "audible\n", out.String())
	assert.Equal(t, "suppressed\naudible\n", logBuf.String())
}

func TestDisplayDetachLog(t *testing.T) {
	out := &bytes.Buffer{}
	logBuf := &bytes.Buffer{}
	d := New(WithWriter(out), WithLog(logBuf))

	d.Result("logged")
	d.SetLog(nil)
	d.Result("console only")

	require.Nil(t, d.Log())
	assert.Equal(t, "logged\n", logBuf.String())
	assert.Equal(t, "logged\nconsole only\n", out.String())
}

func TestDisplayFormatStringsKeepEmptyArguments(t *testing.T) {
	out := &bytes.Buffer{}
	d := New(WithWriter(out))

	d.FormatStrings("", "")
	d.Result("unchanged default")

	assert.Equal(t, "unchanged default\n", out.String())
}

func TestDisplayQuietAccessor(t *testing.T) {
	d := New(WithQuiet(true))
	assert.True(t, d.Quiet())
	d.SetQuiet(false)
	assert.False(t, d.Quiet())
}
