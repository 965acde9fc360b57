// Package pathmatch evaluates glob-style patterns against dotted UCI paths
// and groups them into retention policies. `*` matches a single path segment,
// `**` matches any number of segments (including none), and other segments
// match as shell globs. Policies decide whether a remote-only configuration
// entry is intentionally preserved or surfaced as drift.
package pathmatch
