package present

import (
	"fmt"
	"sort"
	"strings"

	"ucifleet/internal/reconcile"
	"ucifleet/pkg/uci"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the rendering layout.
type Mode int

const (
	// ModeFlat lists commands grouped by category.
	ModeFlat Mode = iota
	// ModeTree groups entries by package and section.
	ModeTree
)

const noDifferences = "No differences found."

// symbols holds the category markers, colored or plain.
type symbols struct {
	add, remove, modify, remote string
	bold                        func(string) string
	dim                         func(string) string
}

func newSymbols(color bool) symbols {
	if !color {
		plain := func(s string) string { return s }
		return symbols{add: "+", remove: "-", modify: "~", remote: "*", bold: plain, dim: plain}
	}
	return symbols{
		add:    text.FgGreen.Sprint("+"),
		remove: text.FgRed.Sprint("-"),
		modify: text.FgYellow.Sprint("~"),
		remote: text.FgCyan.Sprint("*"),
		bold:   func(s string) string { return text.Bold.Sprint(s) },
		dim:    func(s string) string { return text.Faint.Sprint(s) },
	}
}

// Render formats a classified diff for terminal display.
func Render(diff *reconcile.Diff, mode Mode, color bool) string {
	if diff.Empty() {
		return noDifferences
	}
	if mode == ModeTree {
		return renderTree(diff, newSymbols(color))
	}
	return renderFlat(diff, newSymbols(color))
}

func renderFlat(diff *reconcile.Diff, sym symbols) string {
	var lines []string

	if len(diff.Add) > 0 {
		lines = append(lines, "Commands to add:")
		for _, cmd := range diff.Add {
			lines = append(lines, fmt.Sprintf("  %s %s", sym.add, cmd.String()))
		}
	}

	if len(diff.Remove) > 0 {
		lines = append(lines, "", "Commands to remove:")
		for _, cmd := range diff.Remove {
			lines = append(lines, fmt.Sprintf("  %s %s", sym.remove, cmd.String()))
		}
	}

	if len(diff.Modify) > 0 {
		lines = append(lines, "", "Commands to modify:")
		for _, m := range diff.Modify {
			lines = append(lines, fmt.Sprintf("  %s %s", sym.remove, uci.Set(m.Path, m.OldValue).String()))
			lines = append(lines, fmt.Sprintf("  %s %s", sym.add, uci.Set(m.Path, m.NewValue).String()))
		}
	}

	if len(diff.RemoteOnly) > 0 {
		lines = append(lines, "", "Remote-only settings (not managed):")
		for _, cmd := range diff.RemoteOnly {
			lines = append(lines, fmt.Sprintf("  %s %s", sym.remote, cmd.String()))
		}
	}

	if len(diff.Whitelisted) > 0 {
		lines = append(lines, "", "Preserved by retention policy:")
		for _, cmd := range diff.Whitelisted {
			lines = append(lines, "  "+sym.dim(cmd.String()))
		}
	}

	lines = append(lines, "", summary(diff, sym))
	return strings.TrimLeft(strings.Join(lines, "\n"), "\n")
}

// entry is one rendered line inside a section of the tree view.
type entry struct {
	text string
}

func renderTree(diff *reconcile.Diff, sym symbols) string {
	// package -> section -> entries, built in category order so additions
	// render before removals within one section.
	grouped := map[string]map[string][]entry{}

	appendEntry := func(path, line string) {
		pkg, section, _, err := uci.SplitPath(path)
		if err != nil {
			return
		}
		if grouped[pkg] == nil {
			grouped[pkg] = map[string][]entry{}
		}
		grouped[pkg][section] = append(grouped[pkg][section], entry{text: line})
	}

	for _, cmd := range diff.Add {
		appendEntry(cmd.Path, fmt.Sprintf("%s %s = %s", sym.add, option(cmd.Path), cmd.Value))
	}
	for _, cmd := range diff.Remove {
		appendEntry(cmd.Path, fmt.Sprintf("%s %s = %s", sym.remove, option(cmd.Path), cmd.Value))
	}
	for _, m := range diff.Modify {
		appendEntry(m.Path, fmt.Sprintf("%s %s", sym.modify, option(m.Path)))
		appendEntry(m.Path, fmt.Sprintf("  %s %s", sym.remove, m.OldValue))
		appendEntry(m.Path, fmt.Sprintf("  %s %s", sym.add, m.NewValue))
	}
	for _, cmd := range diff.RemoteOnly {
		appendEntry(cmd.Path, fmt.Sprintf("%s %s = %s %s", sym.remote, option(cmd.Path), cmd.Value, sym.dim("(remote-only)")))
	}
	for _, cmd := range diff.Whitelisted {
		appendEntry(cmd.Path, sym.dim(fmt.Sprintf("%s = %s (preserved)", option(cmd.Path), cmd.Value)))
	}

	var lines []string
	for _, pkg := range sortedKeys(grouped) {
		lines = append(lines, "", sym.bold(pkg+"/"))

		sections := sortedKeys(grouped[pkg])
		for i, section := range sections {
			last := i == len(sections)-1
			branch, indent := "├── ", "│   "
			if last {
				branch, indent = "└── ", "    "
			}
			lines = append(lines, branch+section)
			for _, e := range grouped[pkg][section] {
				lines = append(lines, indent+"  "+e.text)
			}
		}
	}

	lines = append(lines, "", summary(diff, sym))
	return strings.TrimLeft(strings.Join(lines, "\n"), "\n")
}

// option returns the path remainder after package and section, or the whole
// path for section-level entries.
func option(path string) string {
	_, section, opt, err := uci.SplitPath(path)
	if err != nil {
		return path
	}
	if opt == "" {
		return section
	}
	return opt
}

func summary(diff *reconcile.Diff, sym symbols) string {
	var parts []string
	if n := len(diff.Add); n > 0 {
		parts = append(parts, fmt.Sprintf("%s%d to add", sym.add, n))
	}
	if n := len(diff.Modify); n > 0 {
		parts = append(parts, fmt.Sprintf("%s%d to modify", sym.modify, n))
	}
	if n := len(diff.Remove); n > 0 {
		parts = append(parts, fmt.Sprintf("%s%d to remove", sym.remove, n))
	}
	if n := len(diff.RemoteOnly); n > 0 {
		parts = append(parts, fmt.Sprintf("%s%d remote-only", sym.remote, n))
	}
	if n := len(diff.Whitelisted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d preserved", n))
	}
	if n := len(diff.Common); n > 0 {
		parts = append(parts, fmt.Sprintf("%d in common", n))
	}
	return sym.bold("Summary:") + " " + strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
