package diagfmt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codeact/internal/diag"
	"codeact/internal/source"
)

// Pretty writes every entry as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with the span underlined ^~~~, and, when
// enabled, the fixes offered for it.
func Pretty(ctx context.Context, w io.Writer, reports []Report, opts PrettyOpts) error {
	p := &printer{w: w, opts: opts}
	for _, rep := range reports {
		for _, e := range rep.Entries {
			p.entry(ctx, rep.File, e)
		}
	}
	return p.err
}

type printer struct {
	w    io.Writer
	opts PrettyOpts
	err  error
}

func (p *printer) printf(c *color.Color, format string, args ...any) {
	if p.err != nil {
		return
	}
	text := fmt.Sprintf(format, args...)
	if c != nil && p.opts.Color {
		c.EnableColor()
		text = c.Sprint(text)
	}
	_, p.err = io.WriteString(p.w, text)
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	caretColor   = color.New(color.FgGreen, color.Bold)
	fixColor     = color.New(color.FgBlue)
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func (p *printer) entry(ctx context.Context, f *source.File, e Entry) {
	d := e.Diagnostic
	start, _ := f.Resolve(d.Span)
	p.printf(nil, "%s:%d:%d: ", formatPath(f, p.opts.PathMode), start.Line, start.Col)
	p.printf(severityColor(d.Severity), "%s %s", d.Severity, d.ID)
	p.printf(nil, ": %s\n", d.Message)

	line := f.GetLine(start.Line)
	lineStart := lineStartOffset(f, start.Line)
	p.printf(nil, "  %s\n", line)
	p.printf(nil, "  %s", caretPadding(line[:min(len(line), int(d.Span.Start-lineStart))]))
	p.printf(caretColor, "%s\n", underline(line, int(d.Span.Start-lineStart), int(d.Span.End-lineStart)))

	if !p.opts.ShowFixes {
		return
	}
	for _, a := range e.Fixes {
		title := a.DisplayTitle()
		if a.IsPreferred {
			title += " (preferred)"
		}
		p.printf(fixColor, "  fix: %s\n", title)
		if !p.opts.ShowPreview || a.Payload == nil {
			continue
		}
		edits, err := a.Payload.Edits(ctx)
		if err != nil {
			p.printf(errorColor, "    error: %v\n", err)
			continue
		}
		for _, edit := range edits {
			preview, err := buildFixEditPreview(f, edit)
			if err != nil {
				continue
			}
			for _, l := range preview.before {
				p.printf(removedColor, "    - %s\n", l)
			}
			for _, l := range preview.after {
				p.printf(addedColor, "    + %s\n", l)
			}
		}
	}
}

// caretPadding keeps tabs and replaces other runes by as many spaces as
// their display width, so the caret lines up under wide characters.
func caretPadding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

// underline marks [start, end) of line, clipped to the line, with at least
// one caret.
func underline(line string, start, end int) string {
	start = min(max(start, 0), len(line))
	end = min(max(end, start), len(line))
	width := runewidth.StringWidth(line[start:end])
	if width <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", width-1)
}
