package styles

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Title    lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Key      lipgloss.Style
	Desc     lipgloss.Style
	Dim      lipgloss.Style
}

func DefaultTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7D56F4"),
		Muted:   lipgloss.Color("#626262"),
		Success: lipgloss.Color("#04B575"),
		Warning: lipgloss.Color("#E5C07B"),
		Error:   lipgloss.Color("#E06C75"),
	}
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1).
		Width(28)
	t.Selected = t.Card.BorderForeground(t.Primary)
	t.Key = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.Desc = lipgloss.NewStyle().Foreground(t.Muted)
	t.Dim = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	return t
}
