package reconcile

import (
	"ucifleet/pkg/uci"
)

// Modification pairs the value a device currently holds with the value the
// desired configuration wants, for one path.
type Modification struct {
	Path     string
	OldValue string
	NewValue string
}

// Diff is the classified result of reconciling a desired configuration
// against a device's live configuration. Every remote command lands in
// exactly one of Modify (as the old value), RemoteOnly, Whitelisted or
// Common; every local command lands in exactly one of Add, Modify (as the
// new value) or Common. A Diff is computed once and read-only afterward.
type Diff struct {
	Add         []uci.Command
	Modify      []Modification
	Remove      []uci.Command
	RemoteOnly  []uci.Command
	Whitelisted []uci.Command
	Common      []uci.Command
}

// Empty reports whether the device already converged: nothing to add,
// modify or remove, and no unmanaged drift.
func (d *Diff) Empty() bool {
	return len(d.Add) == 0 && len(d.Modify) == 0 && len(d.Remove) == 0 && len(d.RemoteOnly) == 0
}

// ChangeCount is the number of commands staging would execute.
func (d *Diff) ChangeCount() int {
	return len(d.Add) + len(d.Modify) + len(d.Remove)
}

// StagingCommands flattens the diff into the ordered command sequence the
// executor pushes to a device: additions, then modified values, then
// removals. Deletes for remote-only entries are appended only when removal
// of unmanaged drift was requested.
func (d *Diff) StagingCommands(removeUnmanaged bool) []uci.Command {
	commands := make([]uci.Command, 0, d.ChangeCount()+len(d.RemoteOnly))
	commands = append(commands, d.Add...)
	for _, m := range d.Modify {
		commands = append(commands, uci.Set(m.Path, m.NewValue))
	}
	commands = append(commands, d.Remove...)
	if removeUnmanaged {
		for _, cmd := range d.RemoteOnly {
			commands = append(commands, uci.Delete(cmd.Path))
		}
	}
	return commands
}
