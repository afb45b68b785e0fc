// pkg/module/help_test.go
package module

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpRendersOptionSurface(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name:  "probe",
		Title: "Probe",
		CLI: []Option{
			{Long: "probe", Kind: KindNone, Kwargs: map[string]any{"enabled": true}, Description: "Enable probing"},
			{Long: "offset", Short: "o", Kind: KindInt, Description: "Start scanning at this file offset"},
			{Long: "region", Kind: KindString, TypeLabel: "region", Description: "Restrict the scan to a named region"},
			{Kind: KindFile, Kwargs: map[string]any{"files": nil}},
		},
	}, func() Module { return &testModule{} })
	reg.Register(Descriptor{
		Name:  "mute",
		Title: "Mute",
	}, func() Module { return &testModule{} })

	help := NewManager(WithRegistry(reg)).Help()

	assert.Contains(t, help, "Probe Options:")
	assert.Contains(t, help, "-o, --offset=<int>")
	assert.Contains(t, help, "--region=<region>", "an explicit type label replaces the kind label")
	assert.Contains(t, help, "--probe")
	assert.NotContains(t, help, "--probe=<", "boolean flags take no value")
	assert.NotContains(t, help, "Mute Options:", "modules without options contribute no section")
	assert.NotContains(t, help, "=<file>", "options without a long flag stay hidden")
}

func TestHelpAlignsDescriptions(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{
		Name:  "probe",
		Title: "Probe",
		CLI: []Option{
			{Long: "offset", Short: "o", Kind: KindInt, Description: "Start scanning at this file offset"},
			{Long: "probe", Kind: KindNone, Description: "Enable probing"},
		},
	}, func() Module { return &testModule{} })

	help := NewManager(WithRegistry(reg)).Help()

	var columns []int
	for _, line := range strings.Split(help, "\n") {
		switch {
		case strings.Contains(line, "Start scanning at this file offset"):
			columns = append(columns, strings.Index(line, "Start scanning"))
		case strings.Contains(line, "Enable probing"):
			columns = append(columns, strings.Index(line, "Enable probing"))
		}
	}
	require.Len(t, columns, 2)
	assert.Equal(t, columns[0], columns[1], "descriptions line up across options")
}
