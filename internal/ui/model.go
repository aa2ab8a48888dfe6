package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Message types for updating the model
type (
	// ProgressMsg carries one pipeline lifecycle event.
	ProgressMsg struct {
		Step    string
		Message string
		Percent int
	}
	// DoneMsg ends the program.
	DoneMsg struct{ Err error }
)

// Model is the Bubbletea model for progress display
type Model struct {
	spinner   spinner.Model
	progress  progress.Model
	currentOp string
	percent   int
	width     int
	quitting  bool
	err       error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return Model{
		spinner:  s,
		progress: p,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		m.currentOp = msg.Message
		m.percent = msg.Percent
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(m.progress.ViewAs(float64(m.percent) / 100))
	sb.WriteString("\n")
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	if m.currentOp != "" {
		sb.WriteString(m.currentOp)
	} else {
		sb.WriteString("Scoring...")
	}

	return sb.String()
}
