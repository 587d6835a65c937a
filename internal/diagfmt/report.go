// Package diagfmt renders lint diagnostics, together with the quick fixes
// available for them, as text, JSON or SARIF.
package diagfmt

import (
	"context"
	"fmt"

	"codeact/internal/codeaction"
	"codeact/internal/diag"
	"codeact/internal/source"
)

// Entry is one diagnostic and the fixes offered at its span.
type Entry struct {
	Diagnostic diag.Diagnostic
	Fixes      []codeaction.Presentable
}

// Report holds the entries of one file.
type Report struct {
	File    *source.File
	Entries []Entry
}

// Collect asks svc for the actions at every diagnostic span and keeps the
// fixes whose provider addresses that diagnostic. Spans touch, so a request
// also sees fixes for neighbouring diagnostics. file.Name must resolve in
// the service's workspace.
func Collect(ctx context.Context, svc *codeaction.Service, file *source.File, diags []diag.Diagnostic) (Report, error) {
	rep := Report{File: file, Entries: make([]Entry, 0, len(diags))}
	for _, d := range diags {
		r := file.RangeOf(d.Span)
		req := codeaction.Request{FileName: file.Name, Position: r.Start}
		if !d.Span.Empty() {
			req.Selection = &r
		}
		res, err := svc.GetAvailableActions(ctx, req)
		if err != nil {
			return Report{}, fmt.Errorf("collect fixes for %s: %w", d.ID, err)
		}
		entry := Entry{Diagnostic: d}
		for _, a := range res.Actions {
			if svc.Addresses(a.Provider, d.ID) {
				entry.Fixes = append(entry.Fixes, a)
			}
		}
		rep.Entries = append(rep.Entries, entry)
	}
	return rep, nil
}

func formatPath(f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", "")
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
