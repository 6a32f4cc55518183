package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/scopectl/pkg/tui"
	"github.com/go-go-golems/scopectl/pkg/tui/styles"
)

// ActionLogModel shows the actions published by the store tap.
type ActionLogModel struct {
	max     int
	entries []tui.ActionLogEntry
	enabled bool

	width  int
	height int

	searching bool
	search    textinput.Model
	filter    string

	vp viewport.Model
}

func NewActionLogModel(enabled bool) ActionLogModel {
	search := textinput.New()
	search.Placeholder = "type or scope…"
	search.Prompt = "/ "
	search.CharLimit = 200

	m := ActionLogModel{max: 200, enabled: enabled, search: search}
	m.vp = viewport.New(0, 0)
	return m
}

func (m ActionLogModel) Searching() bool { return m.searching }

func (m ActionLogModel) Len() int { return len(m.entries) }

func (m ActionLogModel) WithSize(width, height int) ActionLogModel {
	m.width, m.height = width, height
	return m.resizeViewport()
}

func (m ActionLogModel) Update(msg tea.Msg) (ActionLogModel, tea.Cmd) {
	v, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		switch v.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "enter":
			m.filter = strings.TrimSpace(m.search.Value())
			m.searching = false
			m.search.Blur()
			return m.refreshViewportContent(true), nil
		}

		var cmd tea.Cmd
		m.search, cmd = m.search.Update(v)
		return m, cmd
	}

	switch v.String() {
	case "/":
		m.searching = true
		m.search.SetValue(m.filter)
		m.search.CursorEnd()
		m.search.Focus()
		return m, nil
	case "ctrl+l":
		m.filter = ""
		m.search.SetValue("")
		return m.refreshViewportContent(true), nil
	case "c":
		m.entries = nil
		return m.refreshViewportContent(true), nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(v)
	return m, cmd
}

func (m ActionLogModel) Append(e tui.ActionLogEntry) ActionLogModel {
	m.entries = append(m.entries, e)
	if m.max > 0 && len(m.entries) > m.max {
		m.entries = append([]tui.ActionLogEntry{}, m.entries[len(m.entries)-m.max:]...)
	}
	return m.refreshViewportContent(true)
}

func (m ActionLogModel) View() string {
	var b strings.Builder
	filterLabel := ""
	if m.filter != "" {
		filterLabel = fmt.Sprintf(" filter=%q", m.filter)
	}
	b.WriteString(fmt.Sprintf("Actions:%s\n", filterLabel))

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	switch {
	case !m.enabled:
		b.WriteString("(tap disabled, set tap.enabled in the config)\n")
	case len(m.entries) == 0:
		b.WriteString("(no actions yet)\n")
	default:
		b.WriteString(m.vp.View())
	}
	return b.String()
}

func (m ActionLogModel) resizeViewport() ActionLogModel {
	usableHeight := m.height - 2
	if usableHeight < 3 {
		usableHeight = 3
	}
	m.vp.Width = max(0, m.width)
	m.vp.Height = usableHeight
	return m.refreshViewportContent(false)
}

func (m ActionLogModel) refreshViewportContent(gotoBottom bool) ActionLogModel {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if m.filter != "" && !strings.Contains(e.Type, m.filter) && !strings.Contains(e.Scope, m.filter) {
			continue
		}
		lines = append(lines, formatEntry(e))
	}
	if len(lines) == 0 {
		m.vp.SetContent("")
		return m
	}
	m.vp.SetContent(strings.Join(lines, "\n") + "\n")
	if gotoBottom {
		m.vp.GotoBottom()
	}
	return m
}

func formatEntry(e tui.ActionLogEntry) string {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}
	scope := e.Scope
	if scope == "" {
		scope = "(global)"
	}
	return fmt.Sprintf("%s %s %-16s %s", styles.ActionIcon(e.Scope != ""), ts.Format("15:04:05"), scope, e.Type)
}
