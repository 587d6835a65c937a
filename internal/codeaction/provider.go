package codeaction

import (
	"context"
	"reflect"
	"strings"

	"codeact/internal/diag"
	"codeact/internal/order"
	"codeact/internal/source"
)

// Document is the read-only view of a source document.
type Document interface {
	Name() string
	Text(ctx context.Context) ([]byte, error)
	Diagnostics(ctx context.Context) ([]diag.Diagnostic, error)
}

// Workspace resolves documents by file name.
type Workspace interface {
	Document(name string) (Document, bool)
}

// FixContext is handed to a fix provider for one diagnostic group.
type FixContext struct {
	Document Document
	Span     source.Span
	// Diagnostics holds the diagnostics at Span the provider recognizes,
	// most severe first.
	Diagnostics []diag.Diagnostic

	register func(*Action)
}

// Register adds an action to the request. Nil actions are ignored.
func (c *FixContext) Register(a *Action) {
	if a == nil || c.register == nil {
		return
	}
	c.register(a)
}

// RefactoringContext is handed to a refactoring provider once per request.
type RefactoringContext struct {
	Document Document
	Span     source.Span

	register func(*Action)
}

// Register adds an action to the request. Nil actions are ignored.
func (c *RefactoringContext) Register(a *Action) {
	if a == nil || c.register == nil {
		return
	}
	c.register(a)
}

// FixProvider proposes actions addressing diagnostics.
type FixProvider interface {
	FixableDiagnosticIDs() []string
	RegisterFixes(ctx context.Context, fc *FixContext) error
}

// RefactoringProvider proposes actions available at a span regardless of
// diagnostics.
type RefactoringProvider interface {
	ComputeRefactorings(ctx context.Context, rc *RefactoringContext) error
}

// Registration is the metadata a provider is registered with.
type Registration struct {
	// Name is the declared name other providers refer to in constraints.
	Name string
	// ID is the fully-qualified identity used by the disallow policy and in
	// fault logs. Defaults to the provider's Go type.
	ID     string
	Before []string
	After  []string
}

func (r Registration) constraints() []order.Constraint {
	out := make([]order.Constraint, 0, len(r.Before)+len(r.After))
	for _, name := range r.Before {
		out = append(out, order.Constraint{Before: name})
	}
	for _, name := range r.After {
		out = append(out, order.Constraint{After: name})
	}
	return out
}

// FixEntry registers a fix provider.
type FixEntry struct {
	Registration
	Provider FixProvider
}

// RefactoringEntry registers a refactoring provider.
type RefactoringEntry struct {
	Registration
	Provider RefactoringProvider
}

// Bundle is a named set of providers contributed by one source.
type Bundle interface {
	Name() string
	FixProviders() []FixEntry
	RefactoringProviders() []RefactoringEntry
}

// Policy decides whether a provider is globally disabled.
type Policy interface {
	IsDisallowed(id string) bool
}

// DisallowList is a Policy backed by a set of provider identities.
type DisallowList map[string]struct{}

// NewDisallowList builds a DisallowList from ids, ignoring blanks.
func NewDisallowList(ids ...string) DisallowList {
	l := make(DisallowList, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			l[id] = struct{}{}
		}
	}
	return l
}

func (l DisallowList) IsDisallowed(id string) bool {
	_, ok := l[id]
	return ok
}

// Unused import handling. The provider removing unused imports answers only
// for diagnostics raised by its own analyzer, so it declares no ids and is
// matched against this one id instead.
const (
	UnusedImportsProviderID  = "codeact/internal/builtin.RemoveUnusedImports"
	UnusedImportDiagnosticID = "LNT100"
)

func acceptsUnusedImport(providerID, diagnosticID string) bool {
	return providerID == UnusedImportsProviderID && diagnosticID == UnusedImportDiagnosticID
}

// providerIdentity returns the package-qualified type name of p
// ("codeact/internal/builtin.SortLines").
func providerIdentity(p any) string {
	t := reflect.TypeOf(p)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// shortName returns the type name of an identity ("pkg.Name" -> "Name").
func shortName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
