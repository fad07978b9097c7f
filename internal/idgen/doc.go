// Package idgen generates opaque turn identifiers; NewFunc can be replaced in
// tests for deterministic ids.
package idgen
