package pathmatch

import "strings"

// Policy is an ordered set of retention patterns over the dotted path
// namespace. A remote-only entry whose path matches any pattern is treated
// as intentionally preserved rather than unmanaged drift. Evaluation is
// order-independent: any match retains.
//
// A Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	patterns []string
}

// NewPolicy validates every pattern and builds a policy. Malformed patterns
// are rejected here, at load time, never at match time.
func NewPolicy(patterns []string) (*Policy, error) {
	for _, p := range patterns {
		if err := ValidatePattern(p); err != nil {
			return nil, err
		}
	}
	out := make([]string, len(patterns))
	copy(out, patterns)
	return &Policy{patterns: out}, nil
}

// EmptyPolicy retains nothing.
func EmptyPolicy() *Policy {
	return &Policy{}
}

// Patterns returns a copy of the policy's pattern list.
func (p *Policy) Patterns() []string {
	out := make([]string, len(p.patterns))
	copy(out, p.patterns)
	return out
}

// Retains reports whether any pattern matches the path.
func (p *Policy) Retains(path string) bool {
	ok, _ := p.Match(path)
	return ok
}

// Match reports whether any pattern matches the path, and whether the
// matching pattern ends in a wildcard over the final segment. When it does,
// the section-definition command for the matched section is logically part
// of the retained unit and must be retained as well.
func (p *Policy) Match(path string) (retained, retainsSectionDef bool) {
	for _, pattern := range p.patterns {
		if !Matches(pattern, path) {
			continue
		}
		retained = true
		if wildcardTail(pattern) {
			return true, true
		}
	}
	return retained, false
}

// wildcardTail reports whether a pattern's final segment is a pure wildcard.
func wildcardTail(pattern string) bool {
	segs := strings.Split(pattern, ".")
	tail := segs[len(segs)-1]
	return tail == "*" || tail == "**"
}
