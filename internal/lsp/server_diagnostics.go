package lsp

import (
	"sort"
	"sync/atomic"
	"time"

	"codeact/internal/diag"
	"codeact/internal/lint"
)

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := atomic.AddUint64(&s.diagSeq, 1)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

// runDiagnostics publishes lint diagnostics for every open document. A
// superseded run (seq no longer latest) does nothing.
func (s *Server) runDiagnostics(seq uint64) {
	if seq != atomic.LoadUint64(&s.diagSeq) {
		return
	}
	s.mu.Lock()
	if s.shutdownRequested {
		s.mu.Unlock()
		return
	}
	docs := make([]*document, 0, len(s.openDocs))
	for _, doc := range s.openDocs {
		docs = append(docs, doc)
	}
	s.mu.Unlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].uri < docs[j].uri })

	ctx := s.baseCtx
	for _, doc := range docs {
		if seq != atomic.LoadUint64(&s.diagSeq) {
			return
		}
		diags, err := doc.Diagnostics(ctx)
		if err != nil {
			s.logf("diagnostics failed for %s: %v", doc.uri, err)
			continue
		}
		list := make([]lspDiagnostic, 0, len(diags))
		for _, d := range diags {
			list = append(list, toLSPDiagnostic(doc, d))
		}
		if !s.stillOpen(doc) {
			continue
		}
		version := doc.version
		if err := s.sendPublish(doc.uri, &version, list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
			continue
		}
		s.mu.Lock()
		s.published[doc.uri] = struct{}{}
		trace := s.traceLSP
		s.mu.Unlock()
		if trace {
			s.logf("publishDiagnostics: uri=%s version=%d count=%d", doc.uri, version, len(list))
		}
	}
}

// stillOpen reports whether doc is the current snapshot of its uri.
func (s *Server) stillOpen(doc *document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openDocs[doc.uri] == doc
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	uris := make([]string, 0, len(prev))
	for uri := range prev {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func toLSPDiagnostic(doc *document, d diag.Diagnostic) lspDiagnostic {
	source := d.Source
	if source == "" {
		source = lint.SourceName
	}
	return lspDiagnostic{
		Range:    toLSPRange(doc.file.RangeOf(d.Span)),
		Severity: lspSeverity(d.Severity),
		Code:     d.ID,
		Source:   source,
		Message:  d.Message,
	}
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	case diag.SevInfo:
		return 3
	default:
		return 4
	}
}
