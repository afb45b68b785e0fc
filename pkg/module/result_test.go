// pkg/module/result_test.go
package module

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResultStartsFullyFlagged(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Valid)
	assert.True(t, r.Display)
	assert.True(t, r.Extract)
}

func TestResultAttrResolution(t *testing.T) {
	r := NewResult()
	r.Offset = 512
	r.Description = "gzip compressed data"
	r.File = &fakeFile{name: "fw.bin", size: 1024}
	r.SetAttr("entropy", 0.97)

	tests := []struct {
		name string
		want any
		ok   bool
	}{
		{"offset", int64(512), true},
		{"description", "gzip compressed data", true},
		{"file", "fw.bin", true},
		{"valid", true, true},
		{"display", true, true},
		{"extract", true, true},
		{"entropy", 0.97, true},
		{"unknown", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := r.Attr(tt.name)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestResultAttrNilFile(t *testing.T) {
	v, ok := NewResult().Attr("file")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNewErrorCapturesCause(t *testing.T) {
	cause := errors.New("checksum mismatch")
	e := NewError(cause)

	assert.Same(t, cause, e.Err)
	assert.True(t, e.Valid, "errors inherit the default result flags")
	assert.Nil(t, e.Module, "the framework assigns the module on submission")
}

func TestStatusClear(t *testing.T) {
	st := &Status{Completed: 10, Total: 100}
	st.Clear()
	assert.Zero(t, st.Completed)
	assert.Zero(t, st.Total)
}
