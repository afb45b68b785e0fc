// pkg/scanfile/file_test.go
package scanfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTemp writes n cycling bytes and returns the file path.
func writeTemp(t *testing.T, n int) (string, []byte) {
	t.Helper()
	content := make([]byte, n)
	for i := range content {
		content[i] = byte(i % 256)
	}
	path := filepath.Join(t.TempDir(), "target.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path, content
}

func TestOpenFullWindow(t *testing.T) {
	path, _ := writeTemp(t, 1000)

	f, err := Open(path, 0, 0)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "target.bin", f.Name())
	assert.Equal(t, path, f.Path())
	assert.Equal(t, int64(1000), f.Size())
	assert.Zero(t, f.Offset())
	assert.Zero(t, f.Tell())
	assert.Equal(t, int64(DefaultBlockSize), f.BlockSize())
}

func TestOpenWindowed(t *testing.T) {
	path, content := writeTemp(t, 1000)

	f, err := Open(path, 100, 200)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(200), f.Size())
	assert.Equal(t, int64(100), f.Offset())
	assert.Equal(t, int64(100), f.Tell())

	f.SetBlockSize(64)
	block, err := f.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, content[100:164], block)
	assert.Equal(t, int64(164), f.Tell())
}

func TestOpenNegativeOffsetCountsFromEnd(t *testing.T) {
	path, content := writeTemp(t, 1000)

	f, err := Open(path, -100, 0)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(900), f.Offset())
	assert.Equal(t, int64(100), f.Size())

	block, err := f.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, content[900:], block)
}

func TestOpenRejectsOffsetsOutsideFile(t *testing.T) {
	path, _ := writeTemp(t, 100)

	_, err := Open(path, 200, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside file")

	_, err = Open(path, -200, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside file")
}

func TestOpenRejectsDirectories(t *testing.T) {
	_, err := Open(t.TempDir(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"), 0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNextBlockExhaustsWindow(t *testing.T) {
	path, _ := writeTemp(t, 1000)

	f, err := Open(path, 100, 150)
	require.NoError(t, err)
	defer f.Close()
	f.SetBlockSize(64)

	var sizes []int
	for {
		block, err := f.NextBlock()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(block))
	}

	assert.Equal(t, []int{64, 64, 22}, sizes, "the final block is short, never past the window")
	assert.Equal(t, int64(250), f.Tell())
}

func TestSetBlockSizeIgnoresNonPositive(t *testing.T) {
	path, _ := writeTemp(t, 10)

	f, err := Open(path, 0, 0)
	require.NoError(t, err)
	defer f.Close()

	f.SetBlockSize(0)
	assert.Equal(t, int64(DefaultBlockSize), f.BlockSize())
	f.SetBlockSize(-5)
	assert.Equal(t, int64(DefaultBlockSize), f.BlockSize())
}

func TestReadAtLeavesCursorAlone(t *testing.T) {
	path, content := writeTemp(t, 1000)

	f, err := Open(path, 0, 0)
	require.NoError(t, err)
	defer f.Close()
	f.SetBlockSize(128)

	_, err = f.NextBlock()
	require.NoError(t, err)
	before := f.Tell()

	buf := make([]byte, 16)
	n, err := f.ReadAt(buf, 500)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, content[500:516], buf)
	assert.Equal(t, before, f.Tell())
}

func TestRewind(t *testing.T) {
	path, content := writeTemp(t, 1000)

	f, err := Open(path, 100, 0)
	require.NoError(t, err)
	defer f.Close()
	f.SetBlockSize(64)

	first, err := f.NextBlock()
	require.NoError(t, err)
	require.NoError(t, f.Rewind())
	assert.Equal(t, int64(100), f.Tell())

	again, err := f.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, content[100:164], again)
}
