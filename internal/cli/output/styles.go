package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles used for text output.
type Styles struct {
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Path      lipgloss.Style
	Component lipgloss.Style
}

// newStyles builds styles bound to a lipgloss renderer for w. Without a TTY
// the renderer is forced to the ASCII profile so no escape codes are written.
func newStyles(lr *lipgloss.Renderer, isTTY bool) *Styles {
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		Header:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Subheader: lr.NewStyle().Bold(true),
		Success:   lr.NewStyle().Foreground(lipgloss.Color("10")),
		Error:     lr.NewStyle().Foreground(lipgloss.Color("9")),
		Warning:   lr.NewStyle().Foreground(lipgloss.Color("11")),
		Info:      lr.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:     lr.NewStyle().Foreground(lipgloss.Color("8")),
		Path:      lr.NewStyle().Foreground(lipgloss.Color("13")),
		Component: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	}
}
