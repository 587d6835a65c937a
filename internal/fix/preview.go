package fix

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrGuardMismatch is returned when an edit's OldText no longer matches.
	ErrGuardMismatch = errors.New("existing text does not match expected content")
	// ErrConflict is returned when two edits overlap.
	ErrConflict = errors.New("edits overlap")
	// ErrOutOfRange is returned when an edit span exceeds the content.
	ErrOutOfRange = errors.New("edit span out of range")
)

// Preview applies edits to a copy of content and returns the result. The
// input slice is never modified and nothing is written to disk.
func Preview(content []byte, edits []TextEdit) ([]byte, error) {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End < sorted[j].Span.End
		}
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	for i := 1; i < len(sorted); i++ {
		if spansConflict(sorted[i-1], sorted[i]) {
			return nil, fmt.Errorf("%w: %s and %s", ErrConflict, sorted[i-1].Span, sorted[i].Span)
		}
	}

	out := make([]byte, 0, len(content))
	cursor := 0
	for _, edit := range sorted {
		start, end := int(edit.Span.Start), int(edit.Span.End)
		if start < cursor || end < start || end > len(content) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfRange, edit.Span)
		}
		if edit.OldText != "" && string(content[start:end]) != edit.OldText {
			return nil, fmt.Errorf("%w at %s", ErrGuardMismatch, edit.Span)
		}
		out = append(out, content[cursor:start]...)
		out = append(out, edit.NewText...)
		cursor = end
	}
	out = append(out, content[cursor:]...)
	return out, nil
}

// PreviewPayload resolves payload edits and previews them against content.
func PreviewPayload(ctx context.Context, content []byte, p Payload) ([]byte, error) {
	if p == nil {
		return append([]byte(nil), content...), nil
	}
	edits, err := p.Edits(ctx)
	if err != nil {
		return nil, fmt.Errorf("build edits: %w", err)
	}
	return Preview(content, edits)
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length edits
// (Start == End) never conflict. A zero-length edit conflicts with a non-zero
// span if its position is strictly inside that span.
func spansConflict(a, b TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
