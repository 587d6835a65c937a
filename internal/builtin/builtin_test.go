package builtin

import (
	"context"
	"testing"

	"codeact/internal/codeaction"
	"codeact/internal/diag"
	"codeact/internal/fix"
	"codeact/internal/lint"
	"codeact/internal/source"
)

type lintDoc struct {
	name string
	text string
}

func (d lintDoc) Name() string { return d.name }

func (d lintDoc) Text(context.Context) ([]byte, error) { return []byte(d.text), nil }

func (d lintDoc) Diagnostics(context.Context) ([]diag.Diagnostic, error) {
	return lint.Analyze(source.NewVirtualFile(d.name, []byte(d.text)), lint.Options{}), nil
}

type oneDoc struct{ doc lintDoc }

func (w oneDoc) Document(name string) (codeaction.Document, bool) {
	if name != w.doc.name {
		return nil, false
	}
	return w.doc, true
}

func run(t *testing.T, text string, req codeaction.Request) codeaction.Result {
	t.Helper()
	req.FileName = "t.go"
	svc, err := codeaction.NewService(oneDoc{lintDoc{name: "t.go", text: text}}, []codeaction.Bundle{New()}, codeaction.Options{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	res, err := svc.GetAvailableActions(context.Background(), req)
	if err != nil {
		t.Fatalf("GetAvailableActions: %v", err)
	}
	if len(res.Faults) != 0 {
		t.Fatalf("unexpected faults: %+v", res.Faults)
	}
	return res
}

func find(t *testing.T, res codeaction.Result, display string) codeaction.Presentable {
	t.Helper()
	for _, a := range res.Actions {
		if a.DisplayTitle() == display {
			return a
		}
	}
	var got []string
	for _, a := range res.Actions {
		got = append(got, a.DisplayTitle())
	}
	t.Fatalf("action %q not found in %q", display, got)
	return codeaction.Presentable{}
}

func apply(t *testing.T, text string, a codeaction.Presentable) string {
	t.Helper()
	out, err := fix.PreviewPayload(context.Background(), []byte(text), a.Payload)
	if err != nil {
		t.Fatalf("preview %q: %v", a.Title, err)
	}
	return string(out)
}

func at(line, col int) codeaction.Request {
	return codeaction.Request{Position: source.Position{Line: line, Character: col}}
}

func TestBundleIdentityMatchesUnusedImportBypass(t *testing.T) {
	svc, err := codeaction.NewService(oneDoc{}, []codeaction.Bundle{New()}, codeaction.Options{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	var found bool
	for _, e := range svc.FixProviders() {
		if e.Name == NameRemoveUnusedImports {
			found = e.ID == codeaction.UnusedImportsProviderID
		}
	}
	if !found {
		t.Fatal("RemoveUnusedImports must be registered under the bypass identity")
	}
}

func TestTrimTrailingWhitespaceAndIndentOrder(t *testing.T) {
	text := "\tx  \n"
	res := run(t, text, codeaction.Request{Selection: &source.Range{
		Start: source.Position{Line: 0, Character: 0},
		End:   source.Position{Line: 0, Character: 4},
	}})
	trim := find(t, res, "Remove trailing whitespace")
	if got := apply(t, text, trim); got != "\tx\n" {
		t.Fatalf("trim result %q", got)
	}
	four := find(t, res, "Indent with spaces: 4 spaces")
	if got := apply(t, text, four); got != "    x  \n" {
		t.Fatalf("indent result %q", got)
	}
	// IndentWithSpaces is declared after TrimTrailingWhitespace
	var trimIdx, indentIdx int
	for i, a := range res.Actions {
		switch a.DisplayTitle() {
		case "Remove trailing whitespace":
			trimIdx = i
		case "Indent with spaces: 2 spaces":
			indentIdx = i
		}
	}
	if trimIdx > indentIdx {
		t.Fatalf("trim (%d) must precede indent (%d)", trimIdx, indentIdx)
	}
}

func TestInsertFinalNewline(t *testing.T) {
	text := "abc"
	res := run(t, text, at(0, 3))
	if got := apply(t, text, find(t, res, "Insert final newline")); got != "abc\n" {
		t.Fatalf("result %q", got)
	}
}

func TestRemoveUnusedImport(t *testing.T) {
	text := "package p\nimport \"fmt\"\nvar x = 1\n"
	res := run(t, text, at(1, 3))
	if got := apply(t, text, find(t, res, "Remove unused import")); got != "package p\nvar x = 1\n" {
		t.Fatalf("result %q", got)
	}
}

func TestChangeCaseOnWordUnderCaret(t *testing.T) {
	text := "hello world\n"
	res := run(t, text, at(0, 8))
	if got := apply(t, text, find(t, res, "Change case: To upper case")); got != "hello WORLD\n" {
		t.Fatalf("result %q", got)
	}
	if got := apply(t, text, find(t, res, "Change case: To title case")); got != "hello World\n" {
		t.Fatalf("result %q", got)
	}
	for _, a := range res.Actions {
		if a.Title == "To lower case" {
			t.Fatal("lower case variant is a no-op and must be omitted")
		}
	}
	// WrapInParentheses is declared before ChangeCase
	if res.Actions[0].Title != "Wrap in parentheses" {
		t.Fatalf("first action = %q", res.Actions[0].DisplayTitle())
	}
	if got := apply(t, text, res.Actions[0]); got != "hello (world)\n" {
		t.Fatalf("wrap result %q", got)
	}
}

func TestSortLinesAndExtractVariableFiltered(t *testing.T) {
	text := "c\nb\na\n"
	res := run(t, text, codeaction.Request{Selection: &source.Range{
		Start: source.Position{Line: 0, Character: 0},
		End:   source.Position{Line: 3, Character: 0},
	}})
	if got := apply(t, text, find(t, res, "Sort lines")); got != "a\nb\nc\n" {
		t.Fatalf("result %q", got)
	}
	for _, a := range res.Actions {
		if a.Title == "Extract variable..." {
			t.Fatal("actions requiring input must be filtered")
		}
	}
}

func TestNoActionsOnBlankPosition(t *testing.T) {
	res := run(t, "a b\n", at(0, 1))
	// caret sits right after "a", so the word is "a" and refactorings apply
	if len(res.Actions) == 0 {
		t.Fatal("expected word refactorings after the caret")
	}
	res = run(t, "  \n", at(1, 0))
	if len(res.Actions) != 0 {
		t.Fatalf("expected no actions, got %d", len(res.Actions))
	}
}
