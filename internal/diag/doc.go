// Package diag defines the diagnostic model consumed by the code action pipeline.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced by whatever
//     analyzer the host runs (the built-in lint pass, or an external engine).
//   - Offer light-weight utilities (Reporter, Bag) that let analyzers emit
//     diagnostics without coupling to storage or formatting layers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - ID – stable identifier string ("LNT001"). Fix providers declare the ids
//     they recognize; matching is by exact string equality.
//   - Severity – ordered enum (Hidden < Info < Warning < Error).
//   - Span – byte span inside the analyzed document.
//   - Message – human oriented text.
//   - Source – name of the analyzer that produced the diagnostic.
//
// Package diag does not compute fixes: suggested actions are produced by the
// providers wired into internal/codeaction.
package diag
