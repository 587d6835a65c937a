// Package ui renders code action listings for terminals.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"codeact/internal/codeaction"
	"codeact/internal/fix"
)

// Options controls how a listing is rendered.
type Options struct {
	// Title is printed as the header. Empty means no header.
	Title string
	// Width is the terminal width used to truncate titles. Zero means 80.
	Width int
	Color bool
	// ShowProvider appends the contributing provider to every line.
	ShowProvider bool
}

const kindWidth = 16

// RenderActions writes the actions of res in presentation order, followed by
// provider faults and broken ordering cycles.
func RenderActions(w io.Writer, res codeaction.Result, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	paint := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	if opts.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
		b.WriteString(paint(titleStyle, opts.Title))
		b.WriteString("\n\n")
	}

	if len(res.Actions) == 0 {
		b.WriteString("  no actions available\n")
	}
	numWidth := len(fmt.Sprint(len(res.Actions)))
	titleWidth := width - kindWidth - numWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}
	for i, a := range res.Actions {
		title := a.DisplayTitle()
		if a.IsPreferred {
			title += " *"
		}
		if opts.ShowProvider {
			title += " [" + a.Provider + "]"
		}
		kind := paint(styleKind(a.Kind), fmt.Sprintf("%-*s", kindWidth, a.Kind.String()))
		fmt.Fprintf(&b, "  %*d. %s %s\n", numWidth, i+1, kind, truncate(title, titleWidth))
	}

	if len(res.Faults) > 0 {
		b.WriteString("\n")
		b.WriteString(paint(faultStyle, "provider faults:"))
		b.WriteString("\n")
		for _, f := range res.Faults {
			fmt.Fprintf(&b, "  %s (%s): %s\n", f.Name, f.Kind, truncate(f.Err.Error(), width-len(f.Name)-12))
		}
	}
	if len(res.Cycles) > 0 {
		b.WriteString("\n")
		b.WriteString(paint(cycleStyle, "ordering cycles broken:"))
		b.WriteString("\n")
		for _, c := range res.Cycles {
			fmt.Fprintf(&b, "  %s -> %s\n", c.From, c.To)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var (
	faultStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	cycleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

func styleKind(kind fix.Kind) lipgloss.Style {
	switch kind {
	case fix.KindQuickFix:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case fix.KindRefactor, fix.KindRefactorExtract, fix.KindRefactorRewrite:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	case fix.KindSource:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// truncate shortens value to at most width cells, ellipsis included.
func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
