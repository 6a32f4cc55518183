package process

import (
	"context"
	"sync"

	"github.com/go-go-golems/scopectl/pkg/action"
)

// mailbox buffers notifications for one taker. push never blocks, so the
// routing middleware is never held up by a slow process.
type mailbox struct {
	mu     sync.Mutex
	items  []action.Action
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) push(a action.Action) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items, a)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Put lets a process use its own mailbox as a Channel.
func (m *mailbox) Put(a action.Action) { m.push(a) }

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.items = nil
	m.mu.Unlock()
}

// next returns the first buffered action accepted by match. Actions that do
// not match are consumed.
func (m *mailbox) next(ctx context.Context, match func(action.Action) bool) (action.Action, error) {
	for {
		m.mu.Lock()
		for len(m.items) > 0 {
			a := m.items[0]
			m.items[0] = action.Action{}
			m.items = m.items[1:]
			if match == nil || match(a) {
				m.mu.Unlock()
				return a, nil
			}
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return action.Action{}, ctx.Err()
		case <-m.signal:
		}
	}
}
