package tui

import (
	"time"

	"github.com/go-go-golems/scopectl/pkg/demo"
)

type StateSnapshotMsg struct {
	State demo.State
	At    time.Time
}

type ActionLogEntry struct {
	At         time.Time
	Type       string
	GlobalType string
	Scope      string
}

type ActionLogAppendMsg struct {
	Entry ActionLogEntry
}
