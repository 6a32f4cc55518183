package styles

const (
	IconRunning = "▶"
	IconPaused  = "⏸"
	IconStopped = "○"
	IconLocal   = "•"
	IconGlobal  = "●"
	IconGear    = "⚙"
)

// ScopeIcon returns the icon for a container's process state.
func ScopeIcon(mounted, paused bool) string {
	switch {
	case !mounted:
		return IconStopped
	case paused:
		return IconPaused
	default:
		return IconRunning
	}
}

// ActionIcon distinguishes scoped actions from global ones.
func ActionIcon(scoped bool) string {
	if scoped {
		return IconLocal
	}
	return IconGlobal
}
