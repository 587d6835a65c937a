// Package fix models the edit-producing payload carried by a suggested action.
//
// The aggregation pipeline treats a payload as a black box. Hosts call
// Payload.Edits once an action is chosen (or to render an LSP WorkspaceEdit);
// Preview turns the edits into the resulting text without touching disk.
package fix

import (
	"context"

	"codeact/internal/source"
)

// Kind is a coarse classification used by hosts to group actions.
type Kind uint8

const (
	KindQuickFix Kind = iota
	KindRefactor
	KindRefactorExtract
	KindRefactorRewrite
	KindSource
)

// String returns the LSP CodeActionKind spelling.
func (k Kind) String() string {
	switch k {
	case KindQuickFix:
		return "quickfix"
	case KindRefactor:
		return "refactor"
	case KindRefactorExtract:
		return "refactor.extract"
	case KindRefactorRewrite:
		return "refactor.rewrite"
	case KindSource:
		return "source"
	}
	return "unknown"
}

// Applicability is the producer's confidence that the edits are safe.
type Applicability uint8

const (
	ApplicabilityAlwaysSafe Applicability = iota
	ApplicabilitySafeWithHeuristics
	ApplicabilityManualReview
)

func (a Applicability) String() string {
	switch a {
	case ApplicabilityAlwaysSafe:
		return "always-safe"
	case ApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case ApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, guards the edit:
// the covered text must match it exactly.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Payload produces the edits of an action on demand.
type Payload interface {
	Edits(ctx context.Context) ([]TextEdit, error)
}

// Thunk lazily computes edits. It satisfies Payload.
type Thunk func(ctx context.Context) ([]TextEdit, error)

func (t Thunk) Edits(ctx context.Context) ([]TextEdit, error) {
	if t == nil {
		return nil, nil
	}
	return t(ctx)
}

// Fix is a materialised (or lazily built) set of edits with display metadata.
type Fix struct {
	ID            string
	Title         string
	Kind          Kind
	Applicability Applicability
	IsPreferred   bool
	TextEdits     []TextEdit
	Thunk         Thunk
}

// Edits returns the thunk result when one is attached, the static edits otherwise.
func (f Fix) Edits(ctx context.Context) ([]TextEdit, error) {
	if f.Thunk != nil {
		return f.Thunk(ctx)
	}
	out := make([]TextEdit, len(f.TextEdits))
	copy(out, f.TextEdits)
	return out, nil
}
