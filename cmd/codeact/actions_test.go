package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"codeact/internal/builtin"
	"codeact/internal/config"
	"codeact/internal/lint"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest("a.go", 2, 5, 0, 1)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Selection != nil || req.Position.Line != 1 || req.Position.Character != 4 {
		t.Fatalf("unexpected request %+v", req)
	}

	req, err = buildRequest("a.go", 1, 1, 3, 1)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.Selection == nil || req.Selection.End.Line != 2 || req.Selection.End.Character != 0 {
		t.Fatalf("unexpected selection %+v", req.Selection)
	}

	if _, err := buildRequest("a.go", 0, 1, 0, 1); err == nil {
		t.Fatal("expected error for line 0")
	}
	if _, err := buildRequest("a.go", 3, 1, 2, 1); err == nil {
		t.Fatal("expected error for reversed selection")
	}
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cases := []struct {
		mode string
		tty  bool
		want bool
	}{
		{"auto", true, true},
		{"auto", false, false},
		{"on", false, true},
		{"off", true, false},
	}
	for _, tc := range cases {
		got, err := colorEnabled(tc.mode, tc.tty)
		if err != nil {
			t.Fatalf("colorEnabled(%q): %v", tc.mode, err)
		}
		if got != tc.want {
			t.Fatalf("colorEnabled(%q, %v) = %v, want %v", tc.mode, tc.tty, got, tc.want)
		}
	}
	if _, err := colorEnabled("sometimes", true); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestDiskWorkspace(t *testing.T) {
	path := writeTemp(t, "main.go", "x := 1  \n")
	ws := newDiskWorkspace(lint.Options{})
	if _, ok := ws.Document(filepath.Join(filepath.Dir(path), "missing.go")); ok {
		t.Fatal("missing file resolved")
	}
	if _, ok := ws.Document(filepath.Dir(path)); ok {
		t.Fatal("directory resolved as a document")
	}
	doc, ok := ws.Document(path)
	if !ok {
		t.Fatal("document not found")
	}
	diags, err := doc.Diagnostics(context.Background())
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diags) != 1 || diags[0].ID != lint.CodeTrailingWhitespace {
		t.Fatalf("unexpected diagnostics %+v", diags)
	}
	again, _ := ws.Document(path)
	if again != doc {
		t.Fatal("document not cached")
	}
}

func TestActionsOutputMsgpack(t *testing.T) {
	path := writeTemp(t, "main.go", "abc  \n")
	svc, err := newService(newDiskWorkspace(lint.Options{}), config.Default(), nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}
	ctx := context.Background()
	req, _ := buildRequest(path, 1, 5, 0, 1)
	res, err := svc.GetAvailableActions(ctx, req)
	if err != nil {
		t.Fatalf("GetAvailableActions: %v", err)
	}
	out := buildActionsOutput(ctx, path, []byte("abc  \n"), res)

	var buf bytes.Buffer
	if err := renderActionsMsgpack(&buf, out); err != nil {
		t.Fatalf("msgpack: %v", err)
	}
	var decoded map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	actions, ok := decoded["actions"].([]any)
	if !ok || len(actions) == 0 {
		t.Fatalf("no actions in %v", decoded)
	}
	first := actions[0].(map[string]any)
	if first["title"] != "Remove trailing whitespace" || first["kind"] != "quickfix" {
		t.Fatalf("unexpected first action %v", first)
	}

	buf.Reset()
	if err := renderActionsJSON(&buf, out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"new_text": ""`) {
		t.Fatalf("json output missing edit:\n%s", buf.String())
	}
}

// applyTitled applies the action titled title at line:col of the file at path
// and returns the bytes written.
func applyTitled(t *testing.T, path string, line, col int, title string) []byte {
	t.Helper()
	ws := newDiskWorkspace(lint.Options{})
	svc, err := newService(ws, config.Default(), nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}
	ctx := context.Background()
	req, err := buildRequest(path, line, col, 0, 1)
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	res, err := svc.GetAvailableActions(ctx, req)
	if err != nil {
		t.Fatalf("GetAvailableActions: %v", err)
	}
	n := 0
	for i, a := range res.Actions {
		if a.DisplayTitle() == title {
			n = i + 1
			break
		}
	}
	if n == 0 {
		t.Fatalf("no %q action at %d:%d", title, line, col)
	}
	file, err := ws.File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	var out bytes.Buffer
	if err := applyAction(ctx, &out, file, res, n); err != nil {
		t.Fatalf("applyAction: %v", err)
	}
	if err := applyAction(ctx, &out, file, res, len(res.Actions)+1); err == nil {
		t.Fatal("expected error for out-of-range action")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return data
}

func TestApplyAction(t *testing.T) {
	path := writeTemp(t, "main.go", "abc  \n")
	if data := applyTitled(t, path, 1, 5, "Remove trailing whitespace"); string(data) != "abc\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestApplyActionKeepsBOMAndCRLF(t *testing.T) {
	path := writeTemp(t, "main.go", "\ufefffirst\r\nabc  \r\nlast\r\n")
	data := applyTitled(t, path, 2, 5, "Remove trailing whitespace")
	if want := "\ufefffirst\r\nabc\r\nlast\r\n"; string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestApplyActionLeavesLFFilesAlone(t *testing.T) {
	path := writeTemp(t, "main.go", "first\nabc\t\n")
	data := applyTitled(t, path, 2, 4, "Remove trailing whitespace")
	if string(data) != "first\nabc\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestCollectProvidersMarksDisallowed(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Disallow = []string{"codeact/internal/builtin.SortLines"}
	svc, err := newService(newDiskWorkspace(lint.Options{}), cfg, nil)
	if err != nil {
		t.Fatalf("newService: %v", err)
	}
	infos := collectProviders(svc)
	seen := false
	for _, p := range infos {
		if p.Name == builtin.NameSortLines {
			seen = true
			if !p.Disallowed || p.Kind != "refactoring" {
				t.Fatalf("unexpected info %+v", p)
			}
		} else if p.Disallowed {
			t.Fatalf("%s unexpectedly disallowed", p.Name)
		}
	}
	if !seen {
		t.Fatal("SortLines not listed")
	}

	var buf bytes.Buffer
	if err := renderProviders(&buf, infos); err != nil {
		t.Fatalf("renderProviders: %v", err)
	}
	if !strings.Contains(buf.String(), "after TrimTrailingWhitespace") {
		t.Fatalf("constraints missing:\n%s", buf.String())
	}
}
