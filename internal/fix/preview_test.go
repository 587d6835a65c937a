package fix

import (
	"context"
	"errors"
	"testing"

	"codeact/internal/source"
)

func TestPreviewAppliesEditsInOffsetOrder(t *testing.T) {
	content := []byte("x + y")
	fix := WrapWith("Wrap", source.Span{Start: 0, End: 5}, "(", ")")
	out, err := PreviewPayload(context.Background(), content, fix)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if string(out) != "(x + y)" {
		t.Fatalf("unexpected preview %q", out)
	}
	if string(content) != "x + y" {
		t.Fatalf("input mutated: %q", content)
	}
}

func TestPreviewRejectsGuardMismatch(t *testing.T) {
	_, err := Preview([]byte("let x"), []TextEdit{{Span: source.Span{Start: 0, End: 3}, NewText: "var", OldText: "val"}})
	if !errors.Is(err, ErrGuardMismatch) {
		t.Fatalf("expected ErrGuardMismatch, got %v", err)
	}
}

func TestPreviewRejectsOverlap(t *testing.T) {
	_, err := Preview([]byte("abcdef"), []TextEdit{
		{Span: source.Span{Start: 0, End: 3}, NewText: "x"},
		{Span: source.Span{Start: 2, End: 4}, NewText: "y"},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPreviewRejectsOutOfRange(t *testing.T) {
	_, err := Preview([]byte("ab"), []TextEdit{{Span: source.Span{Start: 1, End: 9}}})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestSpansConflict(t *testing.T) {
	mk := func(s, e uint32) TextEdit { return TextEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		name string
		a, b TextEdit
		want bool
	}{
		{"two insertions", mk(3, 3), mk(3, 3), false},
		{"insertion inside", mk(4, 4), mk(3, 6), true},
		{"insertion at start", mk(3, 3), mk(3, 6), false},
		{"adjacent", mk(0, 3), mk(3, 6), false},
		{"overlap", mk(0, 4), mk(3, 6), true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: spansConflict = %v, want %v", tt.name, got, tt.want)
		}
	}
}
