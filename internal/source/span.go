package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one document.
type Span struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// SpanAt returns a zero-length span at offset.
func SpanAt(offset uint32) Span {
	return Span{Start: offset, End: offset}
}

// SpanFromBounds builds a span from two offsets, swapping them when reversed.
func SpanFromBounds(start, end uint32) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Intersects reports whether the spans share a position or touch: the end of
// one coinciding with the start of the other also counts, so a caret placed
// right after a token still selects diagnostics on that token.
func (s Span) Intersects(other Span) bool {
	return other.Start <= s.End && s.Start <= other.End
}

// Contains reports whether offset lies inside [Start, End).
func (s Span) Contains(offset uint32) bool {
	return s.Start <= offset && offset < s.End
}

func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Compare orders spans by start, then by end.
func (s Span) Compare(other Span) int {
	switch {
	case s.Start < other.Start:
		return -1
	case s.Start > other.Start:
		return 1
	case s.End < other.End:
		return -1
	case s.End > other.End:
		return 1
	}
	return 0
}
