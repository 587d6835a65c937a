package main

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"codeact/internal/codeaction"
	"codeact/internal/diagfmt"
	"codeact/internal/ui"
)

var errLintInterrupted = errors.New("lint interrupted")

type lintOutcome struct {
	reports []diagfmt.Report
	err     error
}

// lintWithProgress lints paths on a worker goroutine while a Bubble Tea
// progress view runs on out. Interrupting the view cancels the run.
func lintWithProgress(ctx context.Context, out io.Writer, ws *diskWorkspace, svc *codeaction.Service, paths []string) ([]diagfmt.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan ui.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)
	go func() {
		reports, err := lintFiles(ctx, ws, svc, paths, func(ev ui.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		outcomeCh <- lintOutcome{reports: reports, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("linting", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Aborted(final) {
		cancel()
	}
	outcome := <-outcomeCh
	switch {
	case ui.Aborted(final):
		return nil, errLintInterrupted
	case uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled):
		return nil, uiErr
	}
	return outcome.reports, outcome.err
}
