package textutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes returns the first n runes of s. Counting runes rather than
// bytes keeps multi-byte text such as Japanese intact.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// CollapseSpace trims s and replaces every run of whitespace with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
