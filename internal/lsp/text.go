package lsp

import "codeact/internal/source"

// applyChanges applies incremental or full content changes in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		file := source.NewVirtualFile("", []byte(text))
		span := file.SpanOf(toSourceRange(*change.Range))
		text = text[:span.Start] + change.Text + text[span.End:]
	}
	return text
}

func toSourceRange(r lspRange) source.Range {
	return source.Range{
		Start: source.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   source.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func toLSPRange(r source.Range) lspRange {
	return lspRange{
		Start: position{Line: r.Start.Line, Character: r.Start.Character},
		End:   position{Line: r.End.Line, Character: r.End.Character},
	}
}
