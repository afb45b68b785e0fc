// pkg/scanfile/file.go

// Package scanfile opens target files for scanning, constrained to a window
// so offset and length options apply uniformly across analysis modules.
package scanfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultBlockSize is the read granularity scans use unless a module asks
// for its own.
const DefaultBlockSize = 1 << 20

// File is one scan target. Reads step through the window block by block;
// Tell reports the absolute position so progress can be derived from it.
type File struct {
	f      *os.File
	path   string
	offset int64
	size   int64
	pos    int64
	block  int64
}

// Open opens path and positions the scan window. A negative offset counts
// back from the end of the file. length caps the window; zero means up to
// the end of the file.
func Open(path string, offset, length int64) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat target: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open target %s: is a directory", path)
	}

	total := st.Size()
	if offset < 0 {
		offset = total + offset
	}
	if offset < 0 || offset > total {
		f.Close()
		return nil, fmt.Errorf("open target %s: offset %d outside file of %d bytes", path, offset, total)
	}
	size := total - offset
	if length > 0 && length < size {
		size = length
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek target: %w", err)
	}

	return &File{
		f:      f,
		path:   path,
		offset: offset,
		size:   size,
		pos:    offset,
		block:  DefaultBlockSize,
	}, nil
}

// Name returns the base name used in display output.
func (f *File) Name() string { return filepath.Base(f.path) }

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Size returns the scan window length in bytes.
func (f *File) Size() int64 { return f.size }

// Offset returns the absolute position the window starts at.
func (f *File) Offset() int64 { return f.offset }

// Tell returns the current absolute read position.
func (f *File) Tell() int64 { return f.pos }

// BlockSize returns the current read granularity.
func (f *File) BlockSize() int64 { return f.block }

// SetBlockSize adjusts the read granularity; values below one are ignored.
func (f *File) SetBlockSize(n int64) {
	if n > 0 {
		f.block = n
	}
}

// NextBlock reads the next block inside the scan window. It returns io.EOF
// once the window is exhausted. A block shorter than the block size is
// normal at the end of the window.
func (f *File) NextBlock() ([]byte, error) {
	remaining := f.offset + f.size - f.pos
	if remaining <= 0 {
		return nil, io.EOF
	}
	n := f.block
	if remaining < n {
		n = remaining
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(f.f, buf)
	f.pos += int64(read)
	if read == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return nil, err
	}
	// A short final block is fine; the window just ended early.
	return buf[:read], nil
}

// ReadAt reads from the underlying file at an absolute offset, independent
// of the block cursor. Extraction uses this to carve ranges without
// disturbing the scan position.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

// Rewind moves the read cursor back to the start of the scan window.
func (f *File) Rewind() error {
	if _, err := f.f.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("rewind target: %w", err)
	}
	f.pos = f.offset
	return nil
}

// Close releases the underlying file handle.
func (f *File) Close() error { return f.f.Close() }
