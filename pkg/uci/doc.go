// Package uci models the atomic unit of UCI configuration state: a command
// with an action, a dotted path, and an optional value. It also parses the
// two textual dump formats devices produce (export and show) into ordered
// command lists, and renders command sequences back into shell scripts.
//
// Everything above this package (reconciliation, presentation, fleet
// rollout) is built from and reduced to sequences of Command.
package uci
