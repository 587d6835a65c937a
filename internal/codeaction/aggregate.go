package codeaction

import (
	"sort"

	"codeact/internal/diag"
	"codeact/internal/source"
)

// DiagnosticGroup holds the diagnostics located exactly at Span.
type DiagnosticGroup struct {
	Span        source.Span
	Diagnostics []diag.Diagnostic
}

// Aggregate groups the diagnostics intersecting span by their exact span.
// Groups follow the first appearance of their span in diags; inside a group
// diagnostics are ordered most severe first, keeping input order for ties.
func Aggregate(diags []diag.Diagnostic, span source.Span) []DiagnosticGroup {
	var groups []DiagnosticGroup
	index := make(map[source.Span]int)
	for _, d := range diags {
		if !span.Intersects(d.Span) {
			continue
		}
		i, ok := index[d.Span]
		if !ok {
			i = len(groups)
			index[d.Span] = i
			groups = append(groups, DiagnosticGroup{Span: d.Span})
		}
		groups[i].Diagnostics = append(groups[i].Diagnostics, d)
	}
	for i := range groups {
		ds := groups[i].Diagnostics
		sort.SliceStable(ds, func(a, b int) bool {
			return ds[a].Severity > ds[b].Severity
		})
	}
	return groups
}
