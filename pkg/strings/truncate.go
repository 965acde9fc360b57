package strings

import (
	"strings"
)

// DefaultDetailMaxLen is the default maximum length for detail columns in
// formatted output.
const DefaultDetailMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateOneLine. Values
// smaller than this would not leave room for content plus "...".
const MinTruncateLen = 4

// TruncateOneLine collapses a string to a single line of at most maxLen
// runes. Newlines and runs of whitespace become single spaces, and "..." is
// appended when the string was cut. Operating on runes keeps multi-byte
// characters intact.
func TruncateOneLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
