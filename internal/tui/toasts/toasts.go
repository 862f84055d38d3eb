// ABOUTME: Renders the toast list for terminal output
// ABOUTME: Stacks one bordered line per toast, colored by severity

package toasts

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/tui/styles"
)

var icons = map[models.ToastType]string{
	models.ToastInfo:    "i",
	models.ToastSuccess: "✓",
	models.ToastWarning: "!",
	models.ToastError:   "✗",
}

// Render stacks the toasts vertically. An empty list renders as "".
func Render(list []models.Toast) string {
	if len(list) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(list))
	for _, t := range list {
		rendered = append(rendered, RenderOne(t))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// RenderOne renders a single toast
func RenderOne(t models.Toast) string {
	icon, ok := icons[t.Type]
	if !ok {
		icon = icons[models.ToastInfo]
	}
	return styles.Toast(t.Type).Render(icon + " " + strings.TrimSpace(t.Message))
}

// Line renders a toast without borders, for logs and plain writers
func Line(t models.Toast) string {
	typ := t.Type
	if typ == "" {
		typ = models.ToastInfo
	}
	return "[" + string(typ) + "] " + t.Message
}
