// Package fleet models a named collection of devices managed as one rollout
// unit and drives two-phase coordinated updates across them: parallel
// staging of pending, uncommitted changes with all-or-nothing semantics,
// then a deferred device-local commit so interdependent devices restart
// together. A failed stage on any device rolls back the pending changes on
// every device that had already staged.
package fleet
