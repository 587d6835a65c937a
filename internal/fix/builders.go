package fix

import (
	"codeact/internal/source"
)

// Option mutates fix during construction.
type Option func(*Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app Applicability) Option {
	return func(f *Fix) {
		f.Applicability = app
	}
}

// WithKind overrides fix classification.
func WithKind(kind Kind) Option {
	return func(f *Fix) {
		f.Kind = kind
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *Fix) {
		f.ID = id
	}
}

// WithThunk attaches lazy builder to fix.
func WithThunk(thunk Thunk) Option {
	return func(f *Fix) {
		f.Thunk = thunk
	}
}

func applyOptions(f Fix, opts []Option) Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

func quickFix(title string, edits []TextEdit, opts []Option) Fix {
	fix := Fix{
		Title:         title,
		Kind:          KindQuickFix,
		Applicability: ApplicabilityAlwaysSafe,
		TextEdits:     edits,
	}
	return applyOptions(fix, opts)
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) Fix {
	return quickFix(title, []TextEdit{{Span: at, NewText: text, OldText: guard}}, opts)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) Fix {
	return quickFix(title, []TextEdit{{Span: span, OldText: expect}}, opts)
}

// DeleteSpans removes every span in one fix.
func DeleteSpans(title string, spans []source.Span, opts ...Option) Fix {
	edits := make([]TextEdit, 0, len(spans))
	for _, sp := range spans {
		edits = append(edits, TextEdit{Span: sp})
	}
	return quickFix(title, edits, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) Fix {
	return quickFix(title, []TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts)
}

// ReplaceSpans pairs spans with replacement texts and optional guards.
// Missing guards are treated as unguarded edits.
func ReplaceSpans(title string, spans []source.Span, newTexts, expects []string, opts ...Option) Fix {
	edits := make([]TextEdit, 0, len(spans))
	for i, sp := range spans {
		edit := TextEdit{Span: sp}
		if i < len(newTexts) {
			edit.NewText = newTexts[i]
		}
		if i < len(expects) {
			edit.OldText = expects[i]
		}
		edits = append(edits, edit)
	}
	return quickFix(title, edits, opts)
}

// WrapWith surrounds span with prefix and suffix insertions.
func WrapWith(title string, span source.Span, prefix, suffix string, opts ...Option) Fix {
	edits := []TextEdit{
		{
			Span:    source.SpanAt(span.Start),
			NewText: prefix,
		},
		{
			Span:    source.SpanAt(span.End),
			NewText: suffix,
		},
	}
	fix := Fix{
		Title:         title,
		Kind:          KindRefactorRewrite,
		Applicability: ApplicabilitySafeWithHeuristics,
		TextEdits:     edits,
	}
	return applyOptions(fix, opts)
}
