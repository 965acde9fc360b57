// Package uciconf holds the declarative configuration model: YAML documents
// describing UCI packages, sections, options and list values, plus retention
// patterns. Documents merge in layers (later layers override earlier,
// per path) and flatten into ordered command sequences for reconciliation.
package uciconf
