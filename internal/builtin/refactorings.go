package builtin

import (
	"context"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"codeact/internal/codeaction"
	"codeact/internal/fix"
	"codeact/internal/source"
)

// ChangeCase rewrites the selection, or the word under the caret, in another
// letter case.
type ChangeCase struct{}

func (ChangeCase) ComputeRefactorings(ctx context.Context, rc *codeaction.RefactoringContext) error {
	file, err := loadFile(ctx, rc.Document)
	if err != nil {
		return err
	}
	span := targetSpan(file, rc.Span)
	if span.Empty() {
		return nil
	}
	text := file.Text(span)
	variants := []struct {
		title string
		caser cases.Caser
	}{
		{"To upper case", cases.Upper(language.Und)},
		{"To lower case", cases.Lower(language.Und)},
		{"To title case", cases.Title(language.Und)},
	}
	var children []*codeaction.Action
	for _, v := range variants {
		converted := v.caser.String(text)
		if converted == text {
			continue
		}
		children = append(children, codeaction.FromFix(fix.ReplaceSpan(
			v.title, span, converted, text, fix.WithKind(fix.KindRefactorRewrite),
		)))
	}
	if len(children) == 0 {
		return nil
	}
	rc.Register(codeaction.Nested("Change case", fix.KindRefactorRewrite, children...))
	return nil
}

// SortLines sorts the lines touched by a multi-line selection.
type SortLines struct{}

func (SortLines) ComputeRefactorings(ctx context.Context, rc *codeaction.RefactoringContext) error {
	file, err := loadFile(ctx, rc.Document)
	if err != nil {
		return err
	}
	first := file.PositionOf(rc.Span.Start).Line
	last := file.PositionOf(rc.Span.End).Line
	if last > first && file.PositionOf(rc.Span.End).Character == 0 {
		last-- // a selection ending at column 0 does not include that line
	}
	if last <= first {
		return nil
	}
	span := file.LineSpan(first).Cover(file.LineSpan(last))
	original := file.Text(span)
	rc.Register(codeaction.FromFix(fix.Fix{
		Title:         "Sort lines",
		Kind:          fix.KindRefactorRewrite,
		Applicability: fix.ApplicabilitySafeWithHeuristics,
		Thunk: func(context.Context) ([]fix.TextEdit, error) {
			lines := strings.Split(original, "\n")
			slices.Sort(lines)
			return []fix.TextEdit{{Span: span, NewText: strings.Join(lines, "\n"), OldText: original}}, nil
		},
	}))
	return nil
}

// WrapInParentheses surrounds the selection, or the word under the caret.
type WrapInParentheses struct{}

func (WrapInParentheses) ComputeRefactorings(ctx context.Context, rc *codeaction.RefactoringContext) error {
	file, err := loadFile(ctx, rc.Document)
	if err != nil {
		return err
	}
	span := targetSpan(file, rc.Span)
	if span.Empty() {
		return nil
	}
	rc.Register(codeaction.FromFix(fix.WrapWith("Wrap in parentheses", span, "(", ")")))
	return nil
}

// ExtractVariable needs a variable name from the user, so its action is
// always marked as requiring input.
type ExtractVariable struct{}

func (ExtractVariable) ComputeRefactorings(_ context.Context, rc *codeaction.RefactoringContext) error {
	if rc.Span.Empty() {
		return nil
	}
	rc.Register(&codeaction.Action{
		Title:         "Extract variable...",
		Kind:          fix.KindRefactorExtract,
		RequiresInput: true,
	})
	return nil
}

// targetSpan returns span when it is a selection, otherwise the identifier
// around the caret.
func targetSpan(file *source.File, span source.Span) source.Span {
	if !span.Empty() {
		return span
	}
	return wordAt(file.Content, span.Start)
}

func wordAt(content []byte, offset uint32) source.Span {
	off := int(min(offset, source.MustUint32(len(content))))
	start, end := off, off
	for start > 0 {
		r, size := utf8.DecodeLastRune(content[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	for end < len(content) {
		r, size := utf8.DecodeRune(content[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return source.Span{Start: source.MustUint32(start), End: source.MustUint32(end)}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
