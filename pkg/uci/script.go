package uci

import "strings"

// ScriptOptions controls what a generated apply script includes beyond the
// raw commands.
type ScriptOptions struct {
	Commit bool
	Reload bool
}

// Script renders a shell script that replays the given commands on a device.
func Script(commands []Command, opts ScriptOptions) string {
	lines := []string{"#!/bin/sh", ""}
	for _, cmd := range commands {
		lines = append(lines, cmd.String())
	}
	if opts.Commit {
		lines = append(lines, "", "uci commit")
	}
	if opts.Reload {
		lines = append(lines, "/etc/init.d/network restart", "wifi reload")
	}
	return strings.Join(lines, "\n")
}
