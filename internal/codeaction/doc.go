// Package codeaction aggregates the suggested actions available at a
// location in a document.
//
// A request runs through a fixed sequence of phases:
//
//   - span: the query position or selection becomes a byte span.
//   - aggregate: document diagnostics intersecting the span are grouped by
//     exact span, most severe first inside each group.
//   - fixes: every fix provider that recognizes at least one diagnostic of a
//     group is invoked once for that group.
//   - refactorings: every refactoring provider is invoked once for the span.
//   - order: collected actions are sorted by the before/after constraints
//     their providers declare (see internal/order).
//   - normalize: nested actions are flattened and actions that need
//     interactive input are dropped.
//
// Providers are isolated from each other: an error or panic inside one is
// recorded as a ProviderFault and the request continues. A missing document
// yields an empty result, not an error.
package codeaction
