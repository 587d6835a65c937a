package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"codeact/internal/builtin"
	"codeact/internal/codeaction"
)

func newTestServer(t *testing.T, opts ServerOptions) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.Debounce == 0 {
		opts.Debounce = time.Hour
	}
	if opts.Bundles == nil {
		opts.Bundles = []codeaction.Bundle{builtin.New()}
	}
	server, err := NewServer(bytes.NewReader(nil), &out, opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server, &out
}

func call(t *testing.T, s *Server, method string, id int, params any) {
	t.Helper()
	msg := &rpcMessage{JSONRPC: "2.0", Method: method}
	if id > 0 {
		msg.ID = mustJSON(t, id)
	}
	if params != nil {
		msg.Params = mustJSON(t, params)
	}
	if err := s.handleMessage(msg); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if err != nil {
			break
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		msgs = append(msgs, msg)
	}
	out.Reset()
	return msgs
}

func runDiagnosticsNow(s *Server) {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()
	s.runDiagnostics(atomic.LoadUint64(&s.diagSeq))
}

func openDoc(t *testing.T, s *Server, text string) string {
	t.Helper()
	uri := pathToURI(filepath.Join(t.TempDir(), "main.go"))
	call(t, s, "textDocument/didOpen", 0, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: text},
	})
	return uri
}

func codeActions(t *testing.T, s *Server, out *bytes.Buffer, uri string, r lspRange, only ...string) []codeAction {
	t.Helper()
	out.Reset()
	call(t, s, "textDocument/codeAction", 7, codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        r,
		Context:      codeActionContext{Only: only},
	})
	s.waitRequests()
	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	if msgs[0].Error != nil {
		t.Fatalf("codeAction error: %+v", msgs[0].Error)
	}
	var actions []codeAction
	if err := json.Unmarshal(msgs[0].Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	return actions
}

func titlesOf(actions []codeAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Title
	}
	return out
}

func TestInitializeAdvertisesCodeActions(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	call(t, s, "initialize", 1, initializeParams{RootURI: pathToURI(t.TempDir())})
	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	var result initializeResult
	if err := json.Unmarshal(msgs[0].Result, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Capabilities.CodeActionProvider == nil || len(result.Capabilities.CodeActionProvider.CodeActionKinds) == 0 {
		t.Fatalf("codeActionProvider missing: %+v", result.Capabilities)
	}
	if result.ServerInfo == nil || result.ServerInfo.Name != "codeact" {
		t.Fatalf("unexpected server info %+v", result.ServerInfo)
	}
}

func TestPublishDiagnosticsAfterChange(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	uri := openDoc(t, s, "one\ntwo\n")
	call(t, s, "textDocument/didChange", 0, didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 1, Character: 3}, End: position{Line: 1, Character: 3}},
			Text:  "  ",
		}},
	})
	runDiagnosticsNow(s)

	msgs := readAll(t, out)
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected one publish, got %+v", msgs)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.URI != uri || params.Version == nil || *params.Version != 2 {
		t.Fatalf("unexpected publish target %+v", params)
	}
	if len(params.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", params.Diagnostics)
	}
	got := params.Diagnostics[0]
	if got.Code != "LNT001" || got.Severity != 2 {
		t.Fatalf("unexpected diagnostic %+v", got)
	}
	if got.Range.Start != (position{Line: 1, Character: 3}) || got.Range.End != (position{Line: 1, Character: 5}) {
		t.Fatalf("unexpected range %+v", got.Range)
	}
}

func TestCodeActionReturnsWorkspaceEdits(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	uri := openDoc(t, s, "abc  \n")
	out.Reset()
	actions := codeActions(t, s, out, uri, lspRange{
		Start: position{Line: 0, Character: 4},
		End:   position{Line: 0, Character: 4},
	})
	if len(actions) == 0 || actions[0].Title != "Remove trailing whitespace" {
		t.Fatalf("unexpected actions %q", titlesOf(actions))
	}
	first := actions[0]
	if first.Kind != "quickfix" || !first.IsPreferred {
		t.Fatalf("unexpected action metadata %+v", first)
	}
	edits := first.Edit.Changes[uri]
	if len(edits) != 1 || edits[0].NewText != "" ||
		edits[0].Range.Start != (position{Line: 0, Character: 3}) ||
		edits[0].Range.End != (position{Line: 0, Character: 5}) {
		t.Fatalf("unexpected edits %+v", edits)
	}
}

func TestCodeActionNestedTitlesAndOnlyFilter(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	uri := openDoc(t, s, "hello world\n")
	actions := codeActions(t, s, out, uri, lspRange{
		Start: position{Line: 0, Character: 0},
		End:   position{Line: 0, Character: 5},
	}, "refactor.rewrite")
	want := []string{"Wrap in parentheses", "Change case: To upper case", "Change case: To title case"}
	got := titlesOf(actions)
	if len(got) != len(want) {
		t.Fatalf("titles = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %q, want %q", got, want)
		}
	}

	if actions := codeActions(t, s, out, uri, lspRange{}, "quickfix"); len(actions) != 0 {
		t.Fatalf("expected no quick fixes, got %q", titlesOf(actions))
	}
}

func TestCodeActionUnknownDocument(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	actions := codeActions(t, s, out, "file:///nowhere/x.go", lspRange{})
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %q", titlesOf(actions))
	}
}

// blockingRefactoring parks every request until release is closed or the
// request is cancelled.
type blockingRefactoring struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRefactoring) ComputeRefactorings(ctx context.Context, _ *codeaction.RefactoringContext) error {
	close(b.started)
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type blockingBundle struct{ p *blockingRefactoring }

func (blockingBundle) Name() string                        { return "blocking" }
func (blockingBundle) FixProviders() []codeaction.FixEntry { return nil }
func (b blockingBundle) RefactoringProviders() []codeaction.RefactoringEntry {
	return []codeaction.RefactoringEntry{{
		Registration: codeaction.Registration{Name: "Blocker"},
		Provider:     b.p,
	}}
}

func newBlockingServer(t *testing.T) (*Server, *bytes.Buffer, *blockingRefactoring) {
	t.Helper()
	blocker := &blockingRefactoring{started: make(chan struct{}), release: make(chan struct{})}
	s, out := newTestServer(t, ServerOptions{
		Bundles: []codeaction.Bundle{builtin.New(), blockingBundle{p: blocker}},
	})
	return s, out, blocker
}

func waitStarted(t *testing.T, b *blockingRefactoring) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("code action request never reached the providers")
	}
}

func TestCancelRequestAbortsCodeAction(t *testing.T) {
	s, out, blocker := newBlockingServer(t)
	uri := openDoc(t, s, "abc  \n")
	out.Reset()
	call(t, s, "textDocument/codeAction", 9, codeActionParams{TextDocument: textDocumentIdentifier{URI: uri}})
	waitStarted(t, blocker)
	// unknown ids are ignored
	call(t, s, "$/cancelRequest", 0, map[string]any{"id": 10})
	call(t, s, "$/cancelRequest", 0, map[string]any{"id": 9})
	s.waitRequests()

	msgs := readAll(t, out)
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != -32800 {
		t.Fatalf("expected a request-cancelled error, got %+v", msgs)
	}
	if string(msgs[0].ID) != "9" {
		t.Fatalf("response id = %s", msgs[0].ID)
	}
	s.mu.Lock()
	pending := len(s.pending)
	s.mu.Unlock()
	if pending != 0 {
		t.Fatalf("%d requests still pending", pending)
	}
}

func TestCodeActionEditsMatchRequestSnapshot(t *testing.T) {
	s, out, blocker := newBlockingServer(t)
	uri := openDoc(t, s, "abc  \n")
	out.Reset()
	call(t, s, "textDocument/codeAction", 11, codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range: lspRange{
			Start: position{Line: 0, Character: 4},
			End:   position{Line: 0, Character: 4},
		},
	})
	waitStarted(t, blocker)
	call(t, s, "textDocument/didChange", 0, didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "x\n"}},
	})
	close(blocker.release)
	s.waitRequests()

	msgs := readAll(t, out)
	if len(msgs) != 1 || msgs[0].Error != nil {
		t.Fatalf("unexpected responses %+v", msgs)
	}
	var actions []codeAction
	if err := json.Unmarshal(msgs[0].Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	if len(actions) == 0 || actions[0].Title != "Remove trailing whitespace" {
		t.Fatalf("unexpected actions %q", titlesOf(actions))
	}
	edits := actions[0].Edit.Changes[uri]
	if len(edits) != 1 || edits[0].Range.End != (position{Line: 0, Character: 5}) {
		t.Fatalf("edits not converted against the requested version: %+v", edits)
	}
}

func TestDidChangeConfigurationDisallowsProviders(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	uri := openDoc(t, s, "abc  \n")
	call(t, s, "workspace/didChangeConfiguration", 0, map[string]any{
		"settings": map[string]any{
			"codeact": map[string]any{
				"providers": map[string]any{
					"disallow": []string{"codeact/internal/builtin.TrimTrailingWhitespace"},
				},
			},
		},
	})
	actions := codeActions(t, s, out, uri, lspRange{
		Start: position{Line: 0, Character: 4},
		End:   position{Line: 0, Character: 4},
	})
	for _, a := range actions {
		if a.Title == "Remove trailing whitespace" {
			t.Fatal("disallowed provider still contributed an action")
		}
	}
}

func TestDidCloseClearsPublishedDiagnostics(t *testing.T) {
	s, out := newTestServer(t, ServerOptions{})
	uri := openDoc(t, s, "x \n")
	runDiagnosticsNow(s)
	readAll(t, out)

	call(t, s, "textDocument/didClose", 0, didCloseTextDocumentParams{TextDocument: textDocumentIdentifier{URI: uri}})
	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected a clearing publish, got %d messages", len(msgs))
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if params.URI != uri || len(params.Diagnostics) != 0 {
		t.Fatalf("unexpected clear %+v", params)
	}
}

func TestShutdownAndExit(t *testing.T) {
	s, _ := newTestServer(t, ServerOptions{})
	if err := s.handleMessage(&rpcMessage{Method: "exit"}); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
	call(t, s, "shutdown", 2, nil)
	if err := s.handleMessage(&rpcMessage{Method: "exit"}); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	var in bytes.Buffer
	if err := writeMessage(&in, []byte(`{"jsonrpc":"2.0","id":1,"method":"unknown/method"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	s, err := NewServer(&in, &out, ServerOptions{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := readAll(t, &out)
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != -32601 {
		t.Fatalf("expected method-not-found, got %+v", msgs)
	}
}

func TestApplyChanges(t *testing.T) {
	text := applyChanges("héllo\nworld\n", []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{Line: 0, Character: 1}, End: position{Line: 0, Character: 2}}, Text: "e"},
		{Range: &lspRange{Start: position{Line: 1, Character: 5}, End: position{Line: 1, Character: 5}}, Text: "!"},
	})
	if text != "hello\nworld!\n" {
		t.Fatalf("applyChanges = %q", text)
	}
	if got := applyChanges("old", []textDocumentContentChangeEvent{{Text: "new"}}); got != "new" {
		t.Fatalf("full replacement = %q", got)
	}
}

func TestCanonicalURI(t *testing.T) {
	dir := t.TempDir()
	uri := "file://" + filepath.ToSlash(dir) + "/a/../b.go"
	if got, want := canonicalURI(uri), pathToURI(filepath.Join(dir, "b.go")); got != want {
		t.Fatalf("canonicalURI = %q, want %q", got, want)
	}
	if got := canonicalURI("untitled:Untitled-1"); got != "untitled:Untitled-1" {
		t.Fatalf("non-file uri changed: %q", got)
	}
}
