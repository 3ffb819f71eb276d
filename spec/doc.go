// Package spec implements the feature grammar parser and the
// resolution/execution engine for declarative conformance specifications.
//
// A specification is an ordered list of entries describing a package's
// public surface: property reads, calls with positional and keyword
// arguments, and assignments. Each entry parses into a Feature, executes
// against a document-scoped mutable Scope, and resolves to passed, failed,
// or skipped. Failures never escape the feature boundary; they collapse
// into the ERROR sentinel and compare against the feature's expected value
// under the ERROR/ANY semantics.
package spec
