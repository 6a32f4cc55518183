package tui

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Source is the part of the store the watcher reads.
type Source interface {
	GetState() any
	Subscribe(fn func()) func()
}

// StateWatcher forwards store changes to the program. Store listeners run
// inside Dispatch, which may be the program's own Update, so changes are
// coalesced into a one-slot signal and sent from the watcher's goroutine.
type StateWatcher struct {
	Store    Source
	Send     func(tea.Msg)
	Interval time.Duration
}

func (w *StateWatcher) Run(ctx context.Context) error {
	if w.Store == nil {
		return errors.New("missing Store")
	}
	if w.Send == nil {
		return errors.New("missing Send")
	}
	if w.Interval <= 0 {
		w.Interval = 1 * time.Second
	}

	changed := make(chan struct{}, 1)
	unsubscribe := w.Store.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	t := time.NewTicker(w.Interval)
	defer t.Stop()

	for {
		w.emitSnapshot()

		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		case <-t.C:
		}
	}
}

func (w *StateWatcher) emitSnapshot() {
	st, ok := w.Store.GetState().(demo.State)
	if !ok {
		st = demo.NewState()
	}
	w.Send(StateSnapshotMsg{State: st, At: time.Now()})
}

// ActionWatcher turns actions published by the store tap into log entries.
type ActionWatcher struct {
	Sub    message.Subscriber
	Topic  string
	Prefix string
	Send   func(tea.Msg)
	Logger zerolog.Logger
}

func (w *ActionWatcher) Run(ctx context.Context) error {
	if w.Sub == nil {
		return errors.New("missing Subscriber")
	}
	if w.Send == nil {
		return errors.New("missing Send")
	}
	msgs, err := w.Sub.Subscribe(ctx, w.Topic)
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", w.Topic)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			a, err := action.Decode(msg.Payload)
			msg.Ack()
			if err != nil {
				w.Logger.Debug().Err(err).Str("uuid", msg.UUID).Msg("skipping tapped message")
				continue
			}
			w.Send(ActionLogAppendMsg{Entry: w.entry(a)})
		}
	}
}

func (w *ActionWatcher) entry(a action.Action) ActionLogEntry {
	e := ActionLogEntry{At: time.Now(), Type: a.Type, GlobalType: a.GlobalType}
	if addr, loc := action.ParseLocal(a.Type, w.Prefix); loc == action.Local {
		e.Type = addr.BareType
		e.Scope = addr.Path.String()
	}
	return e
}
