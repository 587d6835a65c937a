package builtin

import (
	"context"
	"strings"

	"codeact/internal/codeaction"
	"codeact/internal/fix"
	"codeact/internal/lint"
	"codeact/internal/source"
)

// TrimTrailingWhitespace deletes trailing blanks.
type TrimTrailingWhitespace struct{}

func (TrimTrailingWhitespace) FixableDiagnosticIDs() []string {
	return []string{lint.CodeTrailingWhitespace}
}

func (TrimTrailingWhitespace) RegisterFixes(ctx context.Context, fc *codeaction.FixContext) error {
	file, err := loadFile(ctx, fc.Document)
	if err != nil {
		return err
	}
	fc.Register(codeaction.FromFix(fix.DeleteSpan(
		"Remove trailing whitespace", fc.Span, file.Text(fc.Span), fix.Preferred(),
	)))
	return nil
}

// IndentWithSpaces replaces leading tabs, offering a choice of widths.
type IndentWithSpaces struct{}

func (IndentWithSpaces) FixableDiagnosticIDs() []string {
	return []string{lint.CodeTabIndent}
}

func (IndentWithSpaces) RegisterFixes(ctx context.Context, fc *codeaction.FixContext) error {
	file, err := loadFile(ctx, fc.Document)
	if err != nil {
		return err
	}
	tabs := file.Text(fc.Span)
	var children []*codeaction.Action
	for _, width := range []int{2, 4} {
		spaces := strings.Repeat(" ", width*len(tabs))
		title := "2 spaces"
		if width == 4 {
			title = "4 spaces"
		}
		children = append(children, codeaction.FromFix(fix.ReplaceSpan(title, fc.Span, spaces, tabs)))
	}
	fc.Register(codeaction.Nested("Indent with spaces", fix.KindQuickFix, children...))
	return nil
}

// InsertFinalNewline terminates the last line.
type InsertFinalNewline struct{}

func (InsertFinalNewline) FixableDiagnosticIDs() []string {
	return []string{lint.CodeMissingFinalNewline}
}

func (InsertFinalNewline) RegisterFixes(_ context.Context, fc *codeaction.FixContext) error {
	fc.Register(codeaction.FromFix(fix.InsertText(
		"Insert final newline", source.SpanAt(fc.Span.End), "\n", "", fix.Preferred(),
	)))
	return nil
}

// RemoveUnusedImports deletes unused import lines. It declares no ids and is
// matched against the unused import diagnostic only.
type RemoveUnusedImports struct{}

func (RemoveUnusedImports) FixableDiagnosticIDs() []string { return nil }

func (RemoveUnusedImports) RegisterFixes(ctx context.Context, fc *codeaction.FixContext) error {
	file, err := loadFile(ctx, fc.Document)
	if err != nil {
		return err
	}
	span := fc.Span
	if span.End < file.Len() && file.Content[span.End] == '\n' {
		span.End++
	}
	fc.Register(codeaction.FromFix(fix.DeleteSpan(
		"Remove unused import", span, file.Text(span), fix.Preferred(), fix.WithKind(fix.KindSource),
	)))
	return nil
}
