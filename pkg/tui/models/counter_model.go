package models

import (
	"fmt"

	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/go-go-golems/scopectl/pkg/scope"
	"github.com/go-go-golems/scopectl/pkg/tui/styles"
)

// CounterView renders the counter a container's scope selects.
func CounterView(theme styles.Theme) scope.View {
	return func(props scope.Props) string {
		c, _ := props.Scope.GetState().(demo.Counter)
		paused := ""
		if c.Paused {
			paused = theme.Dim.Render(" paused")
		}
		return fmt.Sprintf("count %d%s\n%s", c.Count, paused, theme.Desc.Render(fmt.Sprintf("ticks %d", c.Ticks)))
	}
}

// Slot is one container shown by the root model. Parent is the index of
// the enclosing slot, or -1.
type Slot struct {
	Container *scope.Container
	Parent    int
}

func (s Slot) label() string {
	key := s.Container.Scope().Path().String()
	if key == "" {
		return "(root)"
	}
	return key
}
