package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"codeact/internal/codeaction"
	"codeact/internal/diag"
	"codeact/internal/lint"
	"codeact/internal/source"
)

// diskWorkspace resolves documents from the filesystem and lints them on
// demand.
type diskWorkspace struct {
	lint lint.Options

	mu   sync.Mutex
	docs map[string]*diskDocument
}

func newDiskWorkspace(opts lint.Options) *diskWorkspace {
	return &diskWorkspace{lint: opts, docs: make(map[string]*diskDocument)}
}

func (w *diskWorkspace) Document(name string) (codeaction.Document, bool) {
	path, err := filepath.Abs(name)
	if err != nil {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc, ok := w.docs[path]; ok {
		return doc, true
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, false
	}
	doc := &diskDocument{path: path, lint: w.lint}
	w.docs[path] = doc
	return doc, true
}

// File returns the loaded source of name, as the pipeline saw it.
func (w *diskWorkspace) File(name string) (*source.File, error) {
	doc, ok := w.Document(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return doc.(*diskDocument).load()
}

// diskDocument reads its file once; later calls see the same content.
type diskDocument struct {
	path string
	lint lint.Options

	once  sync.Once
	file  *source.File
	err   error
	diags []diag.Diagnostic
}

func (d *diskDocument) load() (*source.File, error) {
	d.once.Do(func() {
		d.file, d.err = source.Load(d.path)
		if d.err == nil {
			d.diags = lint.Analyze(d.file, d.lint)
		}
	})
	return d.file, d.err
}

func (d *diskDocument) Name() string { return d.path }

func (d *diskDocument) Text(context.Context) ([]byte, error) {
	file, err := d.load()
	if err != nil {
		return nil, err
	}
	return file.Content, nil
}

func (d *diskDocument) Diagnostics(context.Context) ([]diag.Diagnostic, error) {
	if _, err := d.load(); err != nil {
		return nil, err
	}
	return d.diags, nil
}
