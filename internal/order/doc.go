// Package order turns named "runs before / runs after" declarations between
// providers into a deterministic total order over the items those providers
// produced.
//
// Constraints are declared between provider names, never between individual
// items: every item a provider produces inherits the provider's constraint
// set. Build groups nodes into per-provider buckets (in first-encounter
// order) and derives predecessor edges; TopologicalSort walks the buckets
// depth-first, emitting predecessors before each node.
//
// The graph is not assumed to be acyclic. A node that is reached again while
// it is still being visited counts as already satisfied, so a cyclic
// declaration degrades to a deterministic partial order instead of failing.
// The broken edges are recorded and available through Cycles.
package order
