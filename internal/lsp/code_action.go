package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"codeact/internal/codeaction"
	"codeact/internal/fix"
	"codeact/internal/source"
)

var supportedKinds = []string{
	fix.KindQuickFix.String(),
	fix.KindRefactor.String(),
	fix.KindRefactorExtract.String(),
	fix.KindRefactorRewrite.String(),
	fix.KindSource.String(),
}

// startCodeAction answers msg on its own goroutine so a later
// $/cancelRequest for the same id can abort it.
func (s *Server) startCodeAction(msg *rpcMessage) {
	ctx, cancel := context.WithCancel(s.baseCtx)
	key := requestKey(msg.ID)
	s.mu.Lock()
	s.pending[key] = cancel
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			s.mu.Lock()
			delete(s.pending, key)
			s.mu.Unlock()
			cancel()
		}()
		if err := s.handleCodeAction(ctx, msg); err != nil {
			s.logf("codeAction %s: %v", key, err)
		}
	}()
}

func (s *Server) handleCancelRequest(msg *rpcMessage) error {
	var params cancelParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.mu.Lock()
	cancel, ok := s.pending[requestKey(params.ID)]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// requestKey maps a JSON-RPC id to a map key; 7 and "7" stay distinct.
func requestKey(id json.RawMessage) string {
	return string(bytes.TrimSpace(id))
}

// waitRequests blocks until every started request has answered.
func (s *Server) waitRequests() {
	s.inflight.Wait()
}

func (s *Server) handleCodeAction(ctx context.Context, msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	actions := []codeAction{}
	doc, ok := s.snapshot(uri)
	if !ok {
		return s.sendResponse(msg.ID, actions)
	}
	req := codeaction.Request{FileName: uri, Document: doc}
	r := toSourceRange(params.Range)
	if r.Start == r.End {
		req.Position = r.Start
	} else {
		req.Selection = &r
	}

	res, err := s.service.GetAvailableActions(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return s.sendError(msg.ID, -32800, "request cancelled")
		}
		return s.sendError(msg.ID, -32603, err.Error())
	}

	file := doc.file
	for _, a := range res.Actions {
		kind := a.Kind.String()
		if !kindAllowed(kind, params.Context.Only) {
			continue
		}
		edit, err := s.workspaceEdit(ctx, uri, file, a)
		if err != nil {
			s.logf("skipping %q from %s: %v", a.DisplayTitle(), a.Provider, err)
			continue
		}
		actions = append(actions, codeAction{
			Title:       a.DisplayTitle(),
			Kind:        kind,
			IsPreferred: a.IsPreferred,
			Edit:        edit,
		})
	}
	return s.sendResponse(msg.ID, actions)
}

// workspaceEdit resolves the payload of a into LSP text edits. The edits are
// previewed first so a stale or conflicting payload is never sent.
func (s *Server) workspaceEdit(ctx context.Context, uri string, file *source.File, a codeaction.Presentable) (*workspaceEdit, error) {
	if a.Payload == nil {
		return nil, errors.New("action has no payload")
	}
	edits, err := a.Payload.Edits(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := fix.Preview(file.Content, edits); err != nil {
		return nil, err
	}
	out := make([]textEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, textEdit{
			Range:   toLSPRange(file.RangeOf(e.Span)),
			NewText: e.NewText,
		})
	}
	return &workspaceEdit{Changes: map[string][]textEdit{uri: out}}, nil
}

// kindAllowed applies the client's "only" filter: a kind matches itself and
// its sub-kinds.
func kindAllowed(kind string, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if kind == o || strings.HasPrefix(kind, o+".") {
			return true
		}
	}
	return false
}
