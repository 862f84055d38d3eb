// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: Colors, panels, and per-severity toast styles

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tcg-binder/internal/models"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent    = lipgloss.Color("#8B5CF6")
	Info      = lipgloss.Color("#3B82F6") // Blue

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	Cursor = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// ToastColor maps a toast severity to its accent color
func ToastColor(t models.ToastType) lipgloss.Color {
	switch t {
	case models.ToastSuccess:
		return Secondary
	case models.ToastWarning:
		return Warning
	case models.ToastError:
		return Danger
	default:
		return Info
	}
}

// Toast returns the bordered style for a toast of severity t
func Toast(t models.ToastType) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ToastColor(t)).
		Foreground(ToastColor(t)).
		Padding(0, 1)
}
