package tui

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/fishblog/fishblog/internal/blog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
)

// statusLine renders the outcome of the last command. Validation failures
// read as hints, anything else as an error.
func statusLine(status string, err error) string {
	switch {
	case err == nil && status == "":
		return ""
	case err == nil:
		return okStyle.Render(status)
	case errors.Is(err, blog.ErrValidation):
		return errStyle.Render(err.Error())
	default:
		return errStyle.Render("Error: ") + err.Error()
	}
}
