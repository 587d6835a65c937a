package codeaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeact/internal/diag"
	"codeact/internal/fix"
	"codeact/internal/source"
)

type memDoc struct {
	name    string
	text    string
	diags   []diag.Diagnostic
	textErr error
}

func (d *memDoc) Name() string { return d.name }

func (d *memDoc) Text(context.Context) ([]byte, error) {
	if d.textErr != nil {
		return nil, d.textErr
	}
	return []byte(d.text), nil
}

func (d *memDoc) Diagnostics(context.Context) ([]diag.Diagnostic, error) {
	return d.diags, nil
}

type memWorkspace map[string]*memDoc

func (w memWorkspace) Document(name string) (Document, bool) {
	d, ok := w[name]
	if !ok {
		return nil, false
	}
	return d, true
}

type testBundle struct {
	name         string
	fixes        []FixEntry
	refactorings []RefactoringEntry
}

func (b *testBundle) Name() string                             { return b.name }
func (b *testBundle) FixProviders() []FixEntry                 { return b.fixes }
func (b *testBundle) RefactoringProviders() []RefactoringEntry { return b.refactorings }

// fakeFix registers one action per title for every call.
type fakeFix struct {
	ids    []string
	titles []string
	err    error
	panicV any
	delay  time.Duration

	mu    sync.Mutex
	calls int
	seen  [][]diag.Diagnostic
}

func (f *fakeFix) FixableDiagnosticIDs() []string { return f.ids }

func (f *fakeFix) RegisterFixes(ctx context.Context, fc *FixContext) error {
	f.mu.Lock()
	f.calls++
	f.seen = append(f.seen, fc.Diagnostics)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, title := range f.titles {
		fc.Register(FromFix(fix.ReplaceSpan(title, fc.Span, title, "")))
	}
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.err
}

func (f *fakeFix) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRefactoring registers the configured actions.
type fakeRefactoring struct {
	actions []*Action
	err     error
	delay   time.Duration
	spans   []source.Span
}

func (r *fakeRefactoring) ComputeRefactorings(ctx context.Context, rc *RefactoringContext) error {
	r.spans = append(r.spans, rc.Span)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	for _, a := range r.actions {
		rc.Register(a)
	}
	return r.err
}

func fixEntry(name string, p FixProvider, before, after []string) FixEntry {
	return FixEntry{
		Registration: Registration{Name: name, ID: "test." + name, Before: before, After: after},
		Provider:     p,
	}
}

func refactoringEntry(name string, p RefactoringProvider, before, after []string) RefactoringEntry {
	return RefactoringEntry{
		Registration: Registration{Name: name, ID: "test." + name, Before: before, After: after},
		Provider:     p,
	}
}

func leaf(title string) *Action {
	return &Action{Title: title, Kind: fix.KindRefactor, Payload: fix.Thunk(nil)}
}

func titles(actions []Presentable) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.DisplayTitle()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func quietLogf(string, ...any) {}

func newTestService(ws Workspace, opts Options, bundles ...Bundle) (*Service, error) {
	if opts.Logf == nil {
		opts.Logf = quietLogf
	}
	return NewService(ws, bundles, opts)
}

var errBoom = errors.New("boom")
