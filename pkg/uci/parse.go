package uci

import (
	"strings"
)

// Format identifies the textual format a device used to dump its
// configuration.
type Format int

const (
	// FormatExport is the `uci export`/`uci show` flat form:
	// package.section=type and package.section.option='value' lines.
	FormatExport Format = iota
	// FormatShow is the /etc/config block form:
	// config <type> '<name>' with indented option/list lines.
	FormatShow
)

// DetectFormat inspects raw device output and decides which parser applies.
func DetectFormat(raw string) Format {
	if strings.Contains(raw, "config ") || strings.Contains(raw, "\toption ") {
		return FormatShow
	}
	return FormatExport
}

// Parse turns raw device output into an ordered command list, auto-detecting
// the dump format.
func Parse(pkg, raw string) []Command {
	if DetectFormat(raw) == FormatShow {
		return ParseShow(pkg, raw)
	}
	return ParseExport(raw)
}

// ParseExport parses the flat export format. Lines look like
// network.lan=interface or network.lan.proto='static'. Blank lines and
// comments are skipped; values keep everything after the first '=' with
// surrounding quotes stripped.
func ParseExport(raw string) []Command {
	var commands []Command
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		path := strings.TrimSpace(line[:eq])
		value := strings.Trim(strings.TrimSpace(line[eq+1:]), "'\"")

		switch strings.Count(path, ".") {
		case 1, 2:
			commands = append(commands, Set(path, value))
		}
	}
	return commands
}

// ParseShow parses the block format produced by reading /etc/config files:
//
//	config interface 'loopback'
//		option device 'lo'
//		list ipaddr '127.0.0.1/8'
//
// The package name is not present in the text and must be supplied.
func ParseShow(pkg, raw string) []Command {
	var commands []Command
	var section string

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "package ") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "config "):
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			sectionType := strings.Trim(fields[1], "'")
			name := quoted(trimmed)
			if name == "" {
				continue
			}
			section = name
			commands = append(commands, Set(pkg+"."+section, sectionType))

		case strings.HasPrefix(trimmed, "option ") && section != "":
			fields := strings.Fields(trimmed)
			value := quoted(trimmed)
			if len(fields) < 2 || value == "" {
				continue
			}
			name := strings.Trim(fields[1], "'")
			commands = append(commands, Set(pkg+"."+section+"."+name, value))

		case strings.HasPrefix(trimmed, "list ") && section != "":
			fields := strings.Fields(trimmed)
			value := quoted(trimmed)
			if len(fields) < 2 || value == "" {
				continue
			}
			name := strings.Trim(fields[1], "'")
			commands = append(commands, AddList(pkg+"."+section+"."+name, value))
		}
	}
	return commands
}

// quoted extracts the first single-quoted token of a line.
func quoted(line string) string {
	parts := strings.Split(line, "'")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
