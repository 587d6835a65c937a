package codeaction

import (
	"testing"

	"codeact/internal/diag"
	"codeact/internal/source"
)

func TestAggregateGroupsByExactSpan(t *testing.T) {
	a := source.Span{Start: 10, End: 15}
	b := source.Span{Start: 12, End: 20}
	diags := []diag.Diagnostic{
		diag.New("I1", diag.SevInfo, a, "info"),
		diag.New("W1", diag.SevWarning, b, "warn"),
		diag.New("E1", diag.SevError, a, "error"),
		diag.New("W2", diag.SevWarning, a, "warn"),
		diag.New("FAR", diag.SevError, source.Span{Start: 40, End: 41}, "far"),
	}
	groups := Aggregate(diags, source.Span{Start: 11, End: 13})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Span != a || groups[1].Span != b {
		t.Fatalf("unexpected group order: %v, %v", groups[0].Span, groups[1].Span)
	}
	var ids []string
	for _, d := range groups[0].Diagnostics {
		if d.Span != a {
			t.Fatalf("diagnostic %s has span %v, want %v", d.ID, d.Span, a)
		}
		ids = append(ids, d.ID)
	}
	if want := []string{"E1", "W2", "I1"}; !equalStrings(ids, want) {
		t.Fatalf("group order = %v, want %v", ids, want)
	}
}

func TestAggregateTouchingSpansIntersect(t *testing.T) {
	diags := []diag.Diagnostic{
		diag.New("END", diag.SevWarning, source.Span{Start: 5, End: 10}, ""),
		diag.New("START", diag.SevWarning, source.Span{Start: 10, End: 12}, ""),
		diag.New("BEFORE", diag.SevWarning, source.Span{Start: 0, End: 4}, ""),
	}
	groups := Aggregate(diags, source.SpanAt(10))
	if len(groups) != 2 {
		t.Fatalf("expected caret at 10 to touch 2 spans, got %d", len(groups))
	}
}

func TestAggregateEmpty(t *testing.T) {
	if groups := Aggregate(nil, source.SpanAt(0)); len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}
