package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage is how far a file has come in a lint run.
type Stage uint8

const (
	StageQueued Stage = iota
	StageAnalyze
	StageFixes
	StageDone
	StageError
)

// Event reports that File reached Stage. Diagnostics is set with StageDone.
type Event struct {
	File        string
	Stage       Stage
	Diagnostics int
}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
	aborted bool
}

type fileItem struct {
	path  string
	stage Stage
	diags int
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows a lint run over
// files. The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

// Aborted reports whether the user interrupted the model returned by
// NewProgressModel.
func Aborted(m tea.Model) bool {
	pm, ok := m.(*progressModel)
	return ok && pm.aborted
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished(), len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		status := item.status()
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(item.stage).Render(fmt.Sprintf("%12s", status)), truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	m.items[idx].stage = ev.Stage
	m.items[idx].diags = ev.Diagnostics

	total := 0.0
	for _, item := range m.items {
		total += stageProgress(item.stage)
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.stage == StageDone || item.stage == StageError {
			n++
		}
	}
	return n
}

func (it fileItem) status() string {
	switch it.stage {
	case StageAnalyze:
		return "linting"
	case StageFixes:
		return "fixing"
	case StageDone:
		if it.diags == 0 {
			return "clean"
		}
		return fmt.Sprintf("%d issues", it.diags)
	case StageError:
		return "error"
	default:
		return "queued"
	}
}

func stageProgress(stage Stage) float64 {
	switch stage {
	case StageAnalyze:
		return 0.3
	case StageFixes:
		return 0.6
	case StageDone, StageError:
		return 1.0
	default:
		return 0.0
	}
}

func styleStatus(stage Stage) lipgloss.Style {
	switch stage {
	case StageDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StageError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StageAnalyze, StageFixes:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}
