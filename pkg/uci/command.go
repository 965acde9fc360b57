package uci

import (
	"fmt"
	"strings"
)

// Action identifies the kind of mutation a Command performs on the UCI store.
type Action string

const (
	// ActionSet assigns a scalar value to an option, or declares a section
	// type when the path has only two segments (package.section).
	ActionSet Action = "set"
	// ActionAddList appends one value to a list-typed option. Several
	// AddList commands may share a path; each (path, value) pair is an
	// independent list element.
	ActionAddList Action = "add_list"
	// ActionDelete removes an option or section.
	ActionDelete Action = "delete"
)

// Command is the atomic unit of configuration state: an action applied to a
// dotted path, with an optional value. Commands are immutable once built and
// are passed by value throughout.
type Command struct {
	Action Action
	Path   string
	Value  string
}

// Set builds a scalar assignment command.
func Set(path, value string) Command {
	return Command{Action: ActionSet, Path: path, Value: value}
}

// AddList builds a list-element command.
func AddList(path, value string) Command {
	return Command{Action: ActionAddList, Path: path, Value: value}
}

// Delete builds a removal command.
func Delete(path string) Command {
	return Command{Action: ActionDelete, Path: path}
}

// String renders the command in `uci` CLI form.
func (c Command) String() string {
	switch c.Action {
	case ActionSet:
		return fmt.Sprintf("uci set %s='%s'", c.Path, c.Value)
	case ActionAddList:
		return fmt.Sprintf("uci add_list %s='%s'", c.Path, c.Value)
	case ActionDelete:
		return fmt.Sprintf("uci delete %s", c.Path)
	default:
		return fmt.Sprintf("uci %s %s='%s'", c.Action, c.Path, c.Value)
	}
}

// IsSectionDef reports whether the command declares a section type
// (package.section = type) rather than an option value.
func (c Command) IsSectionDef() bool {
	return c.Action == ActionSet && strings.Count(c.Path, ".") == 1
}

// MalformedPathError reports a structurally invalid dotted path, such as one
// containing an empty segment. It is fatal for the operation that found it.
type MalformedPathError struct {
	Path string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed UCI path %q", e.Path)
}

// SplitPath breaks a dotted path into its package, section and option parts.
// The option is empty for two-segment paths; paths deeper than three segments
// keep the remainder joined in the option. Paths with fewer than two segments
// or with empty segments are malformed.
func SplitPath(path string) (pkg, section, option string, err error) {
	segs := strings.Split(path, ".")
	if len(segs) < 2 {
		return "", "", "", &MalformedPathError{Path: path}
	}
	for _, s := range segs {
		if s == "" {
			return "", "", "", &MalformedPathError{Path: path}
		}
	}
	pkg = segs[0]
	section = segs[1]
	if len(segs) > 2 {
		option = strings.Join(segs[2:], ".")
	}
	return pkg, section, option, nil
}

// ValidatePath checks that every segment of a dotted path is non-empty.
func ValidatePath(path string) error {
	_, _, _, err := SplitPath(path)
	return err
}

// SectionPath returns the two-segment section prefix of a path
// (network.lan.proto -> network.lan). Section-level paths map to themselves.
func SectionPath(path string) string {
	segs := strings.SplitN(path, ".", 3)
	if len(segs) < 2 {
		return path
	}
	return segs[0] + "." + segs[1]
}
