package uciconf

import (
	"fmt"
	"os"
	"path/filepath"

	"ucifleet/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Load reads one configuration layer from a YAML file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config layer %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config layer %s: %w", path, err)
	}
	return &doc, nil
}

// LoadMerged loads a sequence of configuration layers and merges them in
// order. Relative layer paths resolve against baseDir (normally the
// directory of the fleet inventory file).
func LoadMerged(baseDir string, layers []string) (*Document, error) {
	merged := &Document{}
	for _, layer := range layers {
		path := layer
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		merged = Merge(merged, doc)
		logging.Debug("ConfigLayers", "merged layer %s", path)
	}
	return merged, nil
}

// Merge combines two documents, with overlay winning on a per-path basis:
// scalar options override individually, list options replace wholesale (a
// list is one logical value at its path), and section types override when
// the overlay declares one. Retention patterns are the union of both layers.
func Merge(base, overlay *Document) *Document {
	out := &Document{}

	out.Retain = append(out.Retain, base.Retain...)
	for _, p := range overlay.Retain {
		if !contains(out.Retain, p) {
			out.Retain = append(out.Retain, p)
		}
	}

	for pkg, sections := range base.Packages {
		for name, section := range sections {
			out.AddSection(pkg, name, copySection(section))
		}
	}

	for pkg, sections := range overlay.Packages {
		for name, section := range sections {
			existing, ok := lookup(out, pkg, name)
			if !ok {
				out.AddSection(pkg, name, copySection(section))
				continue
			}
			if section.Type != "" {
				existing.Type = section.Type
			}
			for opt, v := range section.Options {
				if existing.Options == nil {
					existing.Options = map[string]interface{}{}
				}
				existing.Options[opt] = v
			}
			for opt, vs := range section.Lists {
				if existing.Lists == nil {
					existing.Lists = map[string][]string{}
				}
				existing.Lists[opt] = append([]string(nil), vs...)
			}
			out.Packages[pkg][name] = existing
		}
	}

	return out
}

func lookup(d *Document, pkg, name string) (Section, bool) {
	sections, ok := d.Packages[pkg]
	if !ok {
		return Section{}, false
	}
	section, ok := sections[name]
	return section, ok
}

func copySection(s Section) Section {
	out := Section{Type: s.Type}
	if s.Options != nil {
		out.Options = make(map[string]interface{}, len(s.Options))
		for k, v := range s.Options {
			out.Options[k] = v
		}
	}
	if s.Lists != nil {
		out.Lists = make(map[string][]string, len(s.Lists))
		for k, v := range s.Lists {
			out.Lists[k] = append([]string(nil), v...)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
