package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/docscore/docscore/internal/score"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Severity styles
	Critical lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style

	// Status styles keyed by traffic light
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Red    lipgloss.Style

	// Structural styles
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Muted     lipgloss.Style
	Separator lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconCritical string
	IconWarning  string
	IconInfo     string
	IconSuccess  string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Critical = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
		s.Info = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))    // Blue
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green

		s.Green = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		s.Yellow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
		s.Red = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")) // White bold
		s.Subheader = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))          // Gray
		s.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))              // Gray
		s.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))          // Gray

		s.IconCritical = "✗" // ✗
		s.IconWarning = "⚠"  // ⚠
		s.IconInfo = "ℹ"     // ℹ
		s.IconSuccess = "✓"  // ✓
	} else {
		s.Critical = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()
		s.Info = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()

		s.Green = lipgloss.NewStyle()
		s.Yellow = lipgloss.NewStyle()
		s.Red = lipgloss.NewStyle()

		s.Header = lipgloss.NewStyle()
		s.Subheader = lipgloss.NewStyle()
		s.Muted = lipgloss.NewStyle()
		s.Separator = lipgloss.NewStyle()

		// ASCII fallback icons
		s.IconCritical = "CRITICAL:"
		s.IconWarning = "WARN:"
		s.IconInfo = "INFO:"
		s.IconSuccess = "OK:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}

// ForSeverity returns the style and icon for a severity.
func (s *Styles) ForSeverity(sev score.Severity) (lipgloss.Style, string) {
	switch sev {
	case score.Critical:
		return s.Critical, s.IconCritical
	case score.Warning:
		return s.Warning, s.IconWarning
	default:
		return s.Info, s.IconInfo
	}
}

// ForStatus returns the style for a traffic-light status.
func (s *Styles) ForStatus(status score.Status) lipgloss.Style {
	switch status {
	case score.StatusGreen:
		return s.Green
	case score.StatusYellow:
		return s.Yellow
	default:
		return s.Red
	}
}

// ScoreBadge renders "7.2/10" in the status color.
func (s *Styles) ScoreBadge(composite float64, status score.Status) string {
	return s.ForStatus(status).Render(fmt.Sprintf("%.1f/10", composite))
}
