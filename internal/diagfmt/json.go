package diagfmt

import (
	"context"
	"encoding/json"
	"io"

	"codeact/internal/codeaction"
	"codeact/internal/source"
)

// LocationJSON is a file location in JSON output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// FixEditJSON is one edit of a fix.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON is a quick fix offered for a diagnostic.
type FixJSON struct {
	Title       string        `json:"title"`
	Kind        string        `json:"kind"`
	Provider    string        `json:"provider"`
	IsPreferred bool          `json:"is_preferred,omitempty"`
	BuildError  string        `json:"build_error,omitempty"`
	Edits       []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is a diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Source   string       `json:"source,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, f *source.File, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(f, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		start, end := f.Resolve(span)
		loc.StartLine = start.Line
		loc.StartCol = start.Col
		loc.EndLine = end.Line
		loc.EndCol = end.Col
	}
	return loc
}

// BuildDiagnosticsOutput builds the JSON structure without serializing it.
// Fix payloads are resolved with ctx; a payload that fails is reported in
// BuildError instead of failing the whole output.
func BuildDiagnosticsOutput(ctx context.Context, reports []Report, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, rep := range reports {
		for _, e := range rep.Entries {
			if opts.Max > 0 && len(diagnostics) >= opts.Max {
				break
			}
			d := e.Diagnostic
			item := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.ID,
				Source:   d.Source,
				Message:  d.Message,
				Location: makeLocation(d.Span, rep.File, opts.PathMode, opts.IncludePositions),
			}
			if opts.IncludeFixes {
				for _, a := range e.Fixes {
					item.Fixes = append(item.Fixes, buildFixJSON(ctx, rep.File, a, opts))
				}
			}
			diagnostics = append(diagnostics, item)
		}
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON writes the reports as indented JSON.
func JSON(ctx context.Context, w io.Writer, reports []Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(ctx, reports, opts))
}

func buildFixJSON(ctx context.Context, f *source.File, a codeaction.Presentable, opts JSONOpts) FixJSON {
	out := FixJSON{
		Title:       a.DisplayTitle(),
		Kind:        a.Kind.String(),
		Provider:    a.Provider,
		IsPreferred: a.IsPreferred,
	}
	if a.Payload == nil {
		return out
	}
	edits, err := a.Payload.Edits(ctx)
	if err != nil {
		out.BuildError = err.Error()
		return out
	}
	for _, edit := range edits {
		editJSON := FixEditJSON{
			Location: makeLocation(edit.Span, f, opts.PathMode, opts.IncludePositions),
			NewText:  edit.NewText,
			OldText:  edit.OldText,
		}
		if opts.IncludePreviews {
			if preview, err := buildFixEditPreview(f, edit); err == nil {
				editJSON.BeforeLines = preview.before
				editJSON.AfterLines = preview.after
			}
		}
		out.Edits = append(out.Edits, editJSON)
	}
	return out
}
