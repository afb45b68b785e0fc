// pkg/magic/magic.go

// Package magic holds the byte signatures binsift scans for: a built-in
// table of common firmware and archive formats, optionally extended with
// user pattern files.
package magic

import (
	"bytes"
	"sort"
)

// Pattern is one byte signature and the description reported when it is
// found.
type Pattern struct {
	Magic       []byte
	Description string
}

// Match is one signature hit at an absolute file offset. Size is the
// length of the magic bytes that matched, so scanners working in
// overlapping blocks can tell a fresh hit from one already reported.
type Match struct {
	Offset      int64
	Size        int
	Description string
}

// Table is an ordered set of patterns. Scanning returns every hit in offset
// order; patterns added first win ties at the same offset.
type Table struct {
	patterns []Pattern
	maxLen   int
}

// NewTable returns a table over the given patterns. Patterns with no magic
// bytes or no description are dropped.
func NewTable(patterns ...Pattern) *Table {
	t := &Table{}
	for _, p := range patterns {
		t.Add(p)
	}
	return t
}

// Builtin returns a fresh table of the built-in signatures.
func Builtin() *Table {
	return NewTable(builtin...)
}

// Add appends one pattern to the table.
func (t *Table) Add(p Pattern) {
	if len(p.Magic) == 0 || p.Description == "" {
		return
	}
	t.patterns = append(t.patterns, p)
	if len(p.Magic) > t.maxLen {
		t.maxLen = len(p.Magic)
	}
}

// Len returns the number of patterns in the table.
func (t *Table) Len() int { return len(t.patterns) }

// MaxPatternLen returns the longest magic length in the table. Scanners use
// it to size the carry between adjacent blocks so no signature is missed at
// a block boundary.
func (t *Table) MaxPatternLen() int { return t.maxLen }

// Scan finds every pattern occurrence in buf. Offsets in the returned
// matches are absolute: buf's first byte sits at file offset base.
func (t *Table) Scan(buf []byte, base int64) []Match {
	var matches []Match
	for _, p := range t.patterns {
		for start := 0; ; {
			i := bytes.Index(buf[start:], p.Magic)
			if i < 0 {
				break
			}
			matches = append(matches, Match{
				Offset:      base + int64(start+i),
				Size:        len(p.Magic),
				Description: p.Description,
			})
			start += i + 1
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches
}

// builtin covers the formats firmware images are usually stitched from.
// Two-byte signatures are deliberately excluded; they false-positive too
// often to be worth reporting.
var builtin = []Pattern{
	{Magic: []byte{0x1f, 0x8b, 0x08}, Description: "gzip compressed data"},
	{Magic: []byte("BZh9"), Description: "bzip2 compressed data, block size = 900k"},
	{Magic: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, Description: "XZ compressed data"},
	{Magic: []byte{0x04, 0x22, 0x4d, 0x18}, Description: "LZ4 compressed data"},
	{Magic: []byte{0x28, 0xb5, 0x2f, 0xfd}, Description: "Zstandard compressed data"},
	{Magic: []byte("PK\x03\x04"), Description: "Zip archive data"},
	{Magic: []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}, Description: "7-zip archive data"},
	{Magic: []byte("ustar"), Description: "POSIX tar archive"},
	{Magic: []byte("070701"), Description: "ASCII cpio archive (SVR4 with no CRC)"},
	{Magic: []byte{0x7f, 'E', 'L', 'F'}, Description: "ELF binary"},
	{Magic: []byte{0xca, 0xfe, 0xba, 0xbe}, Description: "Compiled Java class data"},
	{Magic: []byte("hsqs"), Description: "Squashfs filesystem, little endian"},
	{Magic: []byte("sqsh"), Description: "Squashfs filesystem, big endian"},
	{Magic: []byte{0x45, 0x3d, 0xcd, 0x28}, Description: "CramFS filesystem, little endian"},
	{Magic: []byte{0x28, 0xcd, 0x3d, 0x45}, Description: "CramFS filesystem, big endian"},
	{Magic: []byte("-rom1fs-"), Description: "romfs filesystem"},
	{Magic: []byte("UBI#"), Description: "UBI erase count header"},
	{Magic: []byte{0x31, 0x18, 0x10, 0x06}, Description: "UBIFS superblock node"},
	{Magic: []byte{0x27, 0x05, 0x19, 0x56}, Description: "uImage firmware image"},
	{Magic: []byte{0xd0, 0x0d, 0xfe, 0xed}, Description: "Flattened device tree"},
	{Magic: []byte("ANDROID!"), Description: "Android boot image"},
	{Magic: []byte("HDR0"), Description: "TRX firmware header"},
	{Magic: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, Description: "PNG image"},
	{Magic: []byte("GIF8"), Description: "GIF image data"},
	{Magic: []byte{0xff, 0xd8, 0xff, 0xe0}, Description: "JPEG image data"},
	{Magic: []byte("%PDF"), Description: "PDF document"},
	{Magic: []byte("SQLite format 3\x00"), Description: "SQLite 3.x database"},
}
