package uciconf

import (
	"fmt"
	"sort"

	"ucifleet/internal/pathmatch"
	"ucifleet/pkg/uci"
)

// Section is one UCI section: a type plus scalar options and list options.
// Option values are kept loosely typed so YAML booleans and integers decode
// naturally; they are normalized to UCI strings when commands are emitted.
type Section struct {
	Type    string                 `yaml:"type"`
	Options map[string]interface{} `yaml:"options,omitempty"`
	Lists   map[string][]string    `yaml:"lists,omitempty"`
}

// Document is a declarative desired configuration: sections grouped by UCI
// package, plus the retention patterns that decide which remote-only entries
// are intentionally preserved.
type Document struct {
	Retain   []string                      `yaml:"retain,omitempty"`
	Packages map[string]map[string]Section `yaml:"packages"`
}

// AddSection appends a section to the document, creating the package map on
// first use. Construction-time convenience for callers assembling a desired
// configuration in code rather than YAML.
func (d *Document) AddSection(pkg, name string, section Section) {
	if d.Packages == nil {
		d.Packages = map[string]map[string]Section{}
	}
	if d.Packages[pkg] == nil {
		d.Packages[pkg] = map[string]Section{}
	}
	d.Packages[pkg][name] = section
}

// SetOption sets one scalar option on an existing section.
func (d *Document) SetOption(pkg, name, option string, value interface{}) {
	section := d.Packages[pkg][name]
	if section.Options == nil {
		section.Options = map[string]interface{}{}
	}
	section.Options[option] = value
	d.Packages[pkg][name] = section
}

// AppendList appends one element to a list option on an existing section.
func (d *Document) AppendList(pkg, name, option, value string) {
	section := d.Packages[pkg][name]
	if section.Lists == nil {
		section.Lists = map[string][]string{}
	}
	section.Lists[option] = append(section.Lists[option], value)
	d.Packages[pkg][name] = section
}

// Commands flattens the document into the ordered command sequence the
// reconciliation engine consumes. Each section emits its section-definition
// command first, then options, then list elements. Packages, sections and
// option names are emitted in sorted order so output is deterministic.
func (d *Document) Commands() []uci.Command {
	var commands []uci.Command

	for _, pkg := range sortedKeys(d.Packages) {
		sections := d.Packages[pkg]
		for _, name := range sortedKeys(sections) {
			section := sections[name]
			base := pkg + "." + name

			if section.Type != "" {
				commands = append(commands, uci.Set(base, section.Type))
			}
			for _, opt := range sortedKeys(section.Options) {
				commands = append(commands, uci.Set(base+"."+opt, FormatValue(section.Options[opt])))
			}
			for _, opt := range sortedKeys(section.Lists) {
				for _, v := range section.Lists[opt] {
					commands = append(commands, uci.AddList(base+"."+opt, v))
				}
			}
		}
	}
	return commands
}

// Policy builds the retention policy declared by the document.
func (d *Document) Policy() (*pathmatch.Policy, error) {
	return pathmatch.NewPolicy(d.Retain)
}

// FormatValue normalizes a loosely typed option value to its UCI string
// form. Booleans become "1"/"0", everything else formats as its natural
// string.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
