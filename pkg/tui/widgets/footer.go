package widgets

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/scopectl/pkg/tui/styles"
)

// Footer renders a styled keybindings bar.
type Footer struct {
	Bindings []key.Binding
	Width    int
	theme    styles.Theme
}

func NewFooter(bindings []key.Binding) Footer {
	return Footer{
		Bindings: bindings,
		theme:    styles.DefaultTheme(),
	}
}

func (f Footer) WithWidth(w int) Footer {
	f.Width = w
	return f
}

// RenderKeybinds joins the enabled bindings as "key desc" pairs.
func RenderKeybinds(bindings []key.Binding, theme styles.Theme) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, theme.Key.Render(h.Key)+" "+theme.Desc.Render(h.Desc))
	}
	return strings.Join(parts, theme.Desc.Render("  "))
}

func (f Footer) Render() string {
	theme := f.theme

	width := f.Width
	if width <= 0 {
		width = 80
	}
	separator := lipgloss.NewStyle().
		Foreground(theme.Muted).
		Render(strings.Repeat("━", width))

	line := RenderKeybinds(f.Bindings, theme)
	padding := (width - lipgloss.Width(line)) / 2
	if padding < 0 {
		padding = 0
	}
	centered := lipgloss.NewStyle().PaddingLeft(padding).Render(line)

	return lipgloss.JoinVertical(lipgloss.Left, separator, centered)
}
