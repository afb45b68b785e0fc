// Package stringutil provides small string helpers shared by the CLI
// listings.
package stringutil

import "strings"

// Ellipsis collapses s to a single line and shortens it to at most maxLength
// characters, appending "..." when truncation occurs. With maxLength of 3 or
// less there is no room for the ellipsis, so the string is cut hard.
func Ellipsis(s string, maxLength int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	if maxLength < 0 {
		return ""
	}
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
