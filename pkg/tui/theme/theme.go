package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the link builder.
type Theme struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Row     RowTheme
	Footer  FooterTheme
}

// RowTheme styles the body rows.
type RowTheme struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Empty    lipgloss.Style
	Result   lipgloss.Style
	Selected lipgloss.Style
	Editing  lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Last   lipgloss.Style
}

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true),
		Section: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Underline(true),
		Row: RowTheme{
			Header:   lipgloss.NewStyle().Bold(true),
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			Value:    lipgloss.NewStyle(),
			Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
			Result:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Selected: lipgloss.NewStyle().Reverse(true),
			Editing:  lipgloss.NewStyle().Foreground(lipgloss.Color("218")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Last:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
	}
}
