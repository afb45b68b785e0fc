// pkg/magic/parse.go
package magic

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// ParseLine parses one user pattern line: a hex-encoded magic string,
// whitespace, then the description. Blank lines and lines starting with '#'
// parse to a zero Pattern and no error.
func ParseLine(line string) (Pattern, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Pattern{}, nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Pattern{}, fmt.Errorf("want <hex-magic> <description>, got %q", line)
	}

	raw, err := hex.DecodeString(fields[0])
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid hex magic %q: %w", fields[0], err)
	}
	if len(raw) == 0 {
		return Pattern{}, fmt.Errorf("empty magic in %q", line)
	}

	return Pattern{
		Magic:       raw,
		Description: strings.Join(fields[1:], " "),
	}, nil
}

// LoadFile reads a user pattern file into the table and returns how many
// patterns it added. One pattern per line; '#' starts a comment.
func (t *Table) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open magic file: %w", err)
	}
	defer f.Close()

	added := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		p, err := ParseLine(scanner.Text())
		if err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if len(p.Magic) == 0 {
			continue
		}
		t.Add(p)
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read magic file: %w", err)
	}
	return added, nil
}
