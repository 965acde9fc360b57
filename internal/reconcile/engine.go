package reconcile

import (
	"fmt"

	"ucifleet/internal/pathmatch"
	"ucifleet/pkg/logging"
	"ucifleet/pkg/uci"
)

// ConflictError signals that the same path was used as both a scalar option
// and a list option within one input. A well-formed builder or parser never
// produces this; it is a contract violation upstream, never silently
// resolved.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("path %q used as both scalar and list", e.Path)
}

// listKey identifies one list element: list membership is diffed
// element-wise by full (path, value) equality, never as an aggregate value.
type listKey struct {
	path  string
	value string
}

// Reconcile computes the classified difference between a desired command
// sequence and the commands observed on a device. It is pure: no I/O, no
// shared state, safe to run concurrently for many devices.
//
// Paths with empty segments abort with a MalformedPathError; a partial diff
// is never returned.
func Reconcile(local, remote []uci.Command, policy *pathmatch.Policy) (*Diff, error) {
	if policy == nil {
		policy = pathmatch.EmptyPolicy()
	}

	if err := validate(local); err != nil {
		return nil, err
	}
	if err := validate(remote); err != nil {
		return nil, err
	}
	if err := checkConflicts(local); err != nil {
		return nil, err
	}
	if err := checkConflicts(remote); err != nil {
		return nil, err
	}

	// Index remote state: scalars by path, list elements by (path, value).
	remoteSet := make(map[string]int, len(remote))
	remoteList := make(map[listKey][]int)
	for i, cmd := range remote {
		if cmd.Action == uci.ActionAddList {
			k := listKey{path: cmd.Path, value: cmd.Value}
			remoteList[k] = append(remoteList[k], i)
		} else {
			remoteSet[cmd.Path] = i
		}
	}

	diff := &Diff{}
	consumed := make([]bool, len(remote))

	for _, cmd := range local {
		switch cmd.Action {
		case uci.ActionAddList:
			// Element-wise list diff: a local element either exists on the
			// remote (common) or must be added. Never a modify.
			k := listKey{path: cmd.Path, value: cmd.Value}
			if idxs := remoteList[k]; len(idxs) > 0 {
				consumed[idxs[0]] = true
				remoteList[k] = idxs[1:]
				diff.Common = append(diff.Common, cmd)
			} else {
				diff.Add = append(diff.Add, cmd)
			}

		case uci.ActionDelete:
			if idx, ok := remoteSet[cmd.Path]; ok {
				consumed[idx] = true
				diff.Remove = append(diff.Remove, cmd)
			} else {
				// Deleting a path the device does not have is a no-op.
				diff.Common = append(diff.Common, cmd)
			}

		default: // ActionSet, including section definitions
			idx, ok := remoteSet[cmd.Path]
			if !ok {
				diff.Add = append(diff.Add, cmd)
				continue
			}
			consumed[idx] = true
			if remote[idx].Value == cmd.Value {
				diff.Common = append(diff.Common, cmd)
			} else {
				diff.Modify = append(diff.Modify, Modification{
					Path:     cmd.Path,
					OldValue: remote[idx].Value,
					NewValue: cmd.Value,
				})
			}
		}
	}

	// Everything on the remote not consumed above is a remote-only
	// candidate. First pass decides retention per candidate and collects
	// section definitions pulled in by wildcard-tailed patterns; second
	// pass classifies in source order.
	retained := make([]bool, len(remote))
	forcedSections := make(map[string]bool)
	for i, cmd := range remote {
		if consumed[i] {
			continue
		}
		keep, withSection := policy.Match(cmd.Path)
		retained[i] = keep
		if keep && withSection && !cmd.IsSectionDef() {
			forcedSections[uci.SectionPath(cmd.Path)] = true
		}
	}

	for i, cmd := range remote {
		if consumed[i] {
			continue
		}
		if retained[i] || (cmd.IsSectionDef() && forcedSections[cmd.Path]) {
			diff.Whitelisted = append(diff.Whitelisted, cmd)
		} else {
			diff.RemoteOnly = append(diff.RemoteOnly, cmd)
		}
	}

	logging.Debug("Reconcile", "classified %d local / %d remote commands: +%d ~%d -%d *%d w%d =%d",
		len(local), len(remote),
		len(diff.Add), len(diff.Modify), len(diff.Remove),
		len(diff.RemoteOnly), len(diff.Whitelisted), len(diff.Common))

	return diff, nil
}

func validate(commands []uci.Command) error {
	for _, cmd := range commands {
		if err := uci.ValidatePath(cmd.Path); err != nil {
			return err
		}
	}
	return nil
}

// checkConflicts rejects inputs that use one path as both a scalar and a
// list.
func checkConflicts(commands []uci.Command) error {
	scalar := make(map[string]bool)
	list := make(map[string]bool)
	for _, cmd := range commands {
		if cmd.Action == uci.ActionAddList {
			list[cmd.Path] = true
		} else if cmd.Action == uci.ActionSet {
			scalar[cmd.Path] = true
		}
	}
	for path := range list {
		if scalar[path] {
			return &ConflictError{Path: path}
		}
	}
	return nil
}
