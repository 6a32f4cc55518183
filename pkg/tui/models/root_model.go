package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/go-go-golems/scopectl/pkg/tui"
	"github.com/go-go-golems/scopectl/pkg/tui/styles"
	"github.com/go-go-golems/scopectl/pkg/tui/widgets"
	"github.com/pkg/errors"
)

type RootModel struct {
	keys  KeyMap
	theme styles.Theme

	global   action.Dispatch
	slots    []Slot
	selected int

	state demo.State
	log   ActionLogModel
	err   error

	width  int
	height int
}

// NewRootModel shows slots and sends global actions through global.
func NewRootModel(global action.Dispatch, slots []Slot, tapEnabled bool) RootModel {
	return RootModel{
		keys:   DefaultKeyMap(),
		theme:  styles.DefaultTheme(),
		global: global,
		slots:  slots,
		state:  demo.NewState(),
		log:    NewActionLogModel(tapEnabled),
	}
}

func (m RootModel) Init() tea.Cmd { return nil }

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.log = m.log.WithSize(v.Width, v.Height-12)
		return m, nil
	case tui.StateSnapshotMsg:
		m.state = v.State
		return m, nil
	case tui.ActionLogAppendMsg:
		m.log = m.log.Append(v.Entry)
		return m, nil
	case tea.KeyMsg:
		if m.log.Searching() {
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(v)
			return m, cmd
		}
		return m.handleKey(v)
	}
	return m, nil
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.UnmountAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		if len(m.slots) > 0 {
			m.selected = (m.selected + 1) % len(m.slots)
		}
	case key.Matches(msg, m.keys.Toggle):
		m.err = m.toggle(m.selected)
	case key.Matches(msg, m.keys.Increment):
		m.dispatchSelected(demo.TypeIncrement)
	case key.Matches(msg, m.keys.Decrement):
		m.dispatchSelected(demo.TypeDecrement)
	case key.Matches(msg, m.keys.Pause):
		m.dispatchSelected(demo.TypePause)
	case key.Matches(msg, m.keys.Reset):
		m.global(action.New(demo.TypeReset, nil))
	default:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m RootModel) dispatchSelected(typ string) {
	if m.selected >= len(m.slots) {
		return
	}
	m.slots[m.selected].Container.Scope().Dispatch(action.New(typ, nil))
}

// toggle mounts or unmounts slot i. Unmounting a slot unmounts its children
// first; a child cannot be mounted under an unmounted parent.
func (m RootModel) toggle(i int) error {
	if i >= len(m.slots) {
		return nil
	}
	s := m.slots[i]
	if s.Container.Mounted() {
		m.unmount(i)
		return nil
	}
	if s.Parent >= 0 && !m.slots[s.Parent].Container.Mounted() {
		return errors.Errorf("mount %s first", m.slots[s.Parent].label())
	}
	return s.Container.Mount()
}

func (m RootModel) unmount(i int) {
	for j, s := range m.slots {
		if s.Parent == i {
			m.unmount(j)
		}
	}
	m.slots[i].Container.Unmount()
}

func (m RootModel) UnmountAll() {
	for i, s := range m.slots {
		if s.Parent < 0 {
			m.unmount(i)
		}
	}
}

func (m RootModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(styles.IconGear + " scopectl"))
	b.WriteString(m.theme.Desc.Render(fmt.Sprintf("  resets %d  last %s", m.state.Resets, lastAction(m.state.Last))))
	b.WriteString("\n\n")

	cards := make([]string, 0, len(m.slots))
	for i, s := range m.slots {
		style := m.theme.Card
		if i == m.selected {
			style = m.theme.Selected
		}
		c, _ := s.Container.Scope().GetState().(demo.Counter)
		header := fmt.Sprintf("%s %s", styles.ScopeIcon(s.Container.Mounted(), c.Paused), s.label())
		cards = append(cards, style.Render(header+"\n"+s.Container.Render()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.log.View())
	b.WriteString("\n")
	b.WriteString(widgets.NewFooter(m.keys.Bindings()).WithWidth(m.width).Render())
	return b.String()
}

func lastAction(t string) string {
	if t == "" {
		return "-"
	}
	return t
}
