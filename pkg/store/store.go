// Package store is a minimal reducer pipeline: a single state value, a
// reducer, and a middleware chain in front of it.
package store

import (
	"sync"

	"github.com/go-go-golems/scopectl/pkg/action"
)

type Reducer func(state any, a action.Action) any

// API is the view of the store a middleware gets.
type API struct {
	GetState func() any
	// Dispatch re-enters the full middleware chain.
	Dispatch action.Dispatch
}

type Middleware func(api API) func(next action.Dispatch) action.Dispatch

type Store struct {
	mu      sync.RWMutex
	state   any
	reducer Reducer

	dispatch action.Dispatch

	listenersMu sync.Mutex
	nextID      uint64
	listeners   map[uint64]func()
	order       []uint64
}

// New builds a store. The first middleware is the outermost one, so it sees
// every action before the others do.
func New(reducer Reducer, initial any, mws ...Middleware) *Store {
	s := &Store{
		state:     initial,
		reducer:   reducer,
		listeners: map[uint64]func(){},
	}

	api := API{
		GetState: s.GetState,
		Dispatch: func(a action.Action) any { return s.dispatch(a) },
	}
	d := action.Dispatch(s.reduce)
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](api)(d)
	}
	s.dispatch = d
	return s
}

func (s *Store) Dispatch(a action.Action) any {
	return s.dispatch(a)
}

func (s *Store) GetState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a change listener, called after every reduced action.
func (s *Store) Subscribe(fn func()) func() {
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// reduce is the end of the chain. Reducers must not dispatch.
func (s *Store) reduce(a action.Action) any {
	s.mu.Lock()
	if s.reducer != nil {
		s.state = s.reducer(s.state, a)
	}
	s.mu.Unlock()

	s.listenersMu.Lock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.listenersMu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return a
}
