package lsp

import (
	"context"
	"sync"

	"codeact/internal/diag"
	"codeact/internal/lint"
	"codeact/internal/source"
)

// document is an immutable snapshot of one open buffer. Edits replace the
// snapshot, so a code action request never observes a half-applied change.
type document struct {
	uri     string
	text    string
	version int
	file    *source.File
	opts    lint.Options

	once  sync.Once
	diags []diag.Diagnostic
}

func newDocument(uri, text string, version int, opts lint.Options) *document {
	return &document{
		uri:     uri,
		text:    text,
		version: version,
		file:    source.NewVirtualFile(uriToPath(uri), []byte(text)),
		opts:    opts,
	}
}

func (d *document) Name() string { return d.uri }

func (d *document) Text(context.Context) ([]byte, error) {
	return []byte(d.text), nil
}

// Diagnostics runs the lint pass once per snapshot.
func (d *document) Diagnostics(context.Context) ([]diag.Diagnostic, error) {
	d.once.Do(func() {
		d.diags = lint.Analyze(d.file, d.opts)
	})
	return d.diags, nil
}
