// Package tui provides the terminal user interface for watching a
// validation run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelierhq/veneer/internal/validation"
)

// EventMsg wraps an orchestrator event for the TUI.
type EventMsg validation.Event

// DoneMsg signals that the validation run has completed.
type DoneMsg struct {
	Passed   bool
	Attempts int
	Failures int
	Err      error
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	stateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	logLineLimit = 12
)

// App is the bubbletea model for a validation run: a header, the current
// machine state, and a scrolling tail of per-artifact repair results.
type App struct {
	events <-chan validation.Event

	spinner  spinner.Model
	state    validation.State
	attempt  int
	failures int
	log      []string
	done     *DoneMsg
	quitting bool
}

// New creates an App consuming events from the given channel.
func New(events <-chan validation.Event) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	return &App{
		events:  events,
		spinner: sp,
		attempt: 1,
	}
}

// waitForEvent blocks on the event channel and converts the next event
// into a message. A closed channel means the run is over.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return EventMsg(ev)
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForEvent())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}
		return a, nil

	case EventMsg:
		a.apply(validation.Event(msg))
		return a, a.waitForEvent()

	case DoneMsg:
		a.done = &msg
		return a, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// apply folds one orchestrator event into the display state.
func (a *App) apply(ev validation.Event) {
	if ev.Attempt > 0 {
		a.attempt = ev.Attempt
	}
	a.state = ev.State

	switch ev.Type {
	case validation.EventRepair:
		a.appendLog(fmt.Sprintf("attempt %d  repair %-20s %s", ev.Attempt, ev.Artifact, ev.Message))
	case validation.EventCheck:
		a.failures = ev.Failures
		a.appendLog(fmt.Sprintf("attempt %d  check: %d failing", ev.Attempt, ev.Failures))
	case validation.EventDone:
		a.failures = ev.Failures
	}
}

func (a *App) appendLog(line string) {
	a.log = append(a.log, line)
	if len(a.log) > logLineLimit {
		a.log = a.log[len(a.log)-logLineLimit:]
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting && a.done == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("veneer validation"))
	b.WriteString("\n\n")

	if a.done != nil {
		if a.done.Err != nil {
			b.WriteString(failStyle.Render("TOOL FAILURE"))
			b.WriteString("  " + a.done.Err.Error() + "\n")
		} else if a.done.Passed {
			b.WriteString(passStyle.Render("PASSED"))
			b.WriteString(fmt.Sprintf("  attempt %d\n", a.done.Attempts))
		} else {
			b.WriteString(failStyle.Render("FAILED"))
			b.WriteString(fmt.Sprintf("  %d artifact(s) still failing after attempt %d\n", a.done.Failures, a.done.Attempts))
		}
	} else {
		b.WriteString(fmt.Sprintf("%s %s  attempt %d  %d failing\n",
			a.spinner.View(), stateStyle.Render(a.state.String()), a.attempt, a.failures))
	}

	if len(a.log) > 0 {
		b.WriteString("\n")
		for _, line := range a.log {
			b.WriteString(dimStyle.Render("  "+line) + "\n")
		}
	}

	if a.done == nil {
		b.WriteString("\n" + dimStyle.Render("q to quit") + "\n")
	}
	return b.String()
}

// Verify App implements tea.Model at compile time.
var _ tea.Model = (*App)(nil)
