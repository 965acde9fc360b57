package pathmatch

import (
	"fmt"
	"path"
	"strings"
)

// PatternError reports a pattern that cannot be used for matching. Patterns
// are validated when a policy is loaded, never at match time.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid path pattern %q: %s", e.Pattern, e.Reason)
}

// ValidatePattern rejects structurally broken patterns: empty patterns,
// empty segments (repeated or trailing dots), and segments that are not
// well-formed globs.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return &PatternError{Pattern: pattern, Reason: "empty pattern"}
	}
	for _, seg := range strings.Split(pattern, ".") {
		if seg == "" {
			return &PatternError{Pattern: pattern, Reason: "empty segment"}
		}
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return &PatternError{Pattern: pattern, Reason: fmt.Sprintf("bad segment %q", seg)}
		}
	}
	return nil
}

// Matches evaluates a glob-style pattern against a dotted path. `*` matches
// exactly one segment, `**` matches zero or more segments, and any other
// segment is matched as a shell glob against the corresponding path segment
// (so literals compare for equality and prefixes like br_* work). A `*`
// never crosses a `.` boundary.
func Matches(pattern, p string) bool {
	if p == "" {
		return pattern == "" || pattern == "**"
	}
	return matchSegments(strings.Split(pattern, "."), strings.Split(p, "."))
}

// matchSegments is classic glob-over-segments backtracking: `**` is tried
// first consuming zero segments, then one segment at a time against the
// remainder.
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}

	head, rest := pattern[0], pattern[1:]

	if head == "**" {
		if matchSegments(rest, segs) {
			return true
		}
		if len(segs) == 0 {
			return false
		}
		return matchSegments(pattern, segs[1:])
	}

	if len(segs) == 0 {
		return false
	}

	ok, err := path.Match(head, segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(rest, segs[1:])
}
