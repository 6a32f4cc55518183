package registry

import (
	"sort"
	"sync"

	"github.com/go-go-golems/scopectl/pkg/action"
)

type Listener func(a action.Action)

type entry struct {
	id uint64
	fn Listener
}

// Registry maps scope keys to ordered listener lists. A key is present only
// while it has at least one listener.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	streams map[string][]entry
	closed  bool
}

func New() *Registry {
	return &Registry{
		streams: map[string][]entry{},
	}
}

// Subscribe returns the subscribe function handed to a process bound to key.
// Each call appends a listener and returns an idempotent unsubscribe.
func (r *Registry) Subscribe(key string) func(Listener) func() {
	return func(fn Listener) func() {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return func() {}
		}
		r.nextID++
		id := r.nextID
		r.streams[key] = append(r.streams[key], entry{id: id, fn: fn})
		r.mu.Unlock()

		var once sync.Once
		return func() {
			once.Do(func() { r.remove(key, id) })
		}
	}
}

func (r *Registry) remove(key string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs, ok := r.streams[key]
	if !ok {
		return
	}
	kept := subs[:0:0]
	for _, e := range subs {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(r.streams, key)
		return
	}
	r.streams[key] = kept
}

// Publish delivers a to the listeners of key and reports whether the key had
// any.
func (r *Registry) Publish(key string, a action.Action) bool {
	r.mu.Lock()
	subs := append([]entry{}, r.streams[key]...)
	r.mu.Unlock()

	if len(subs) == 0 {
		return false
	}
	for _, e := range subs {
		e.fn(a)
	}
	return true
}

// Broadcast delivers a to every listener of every key.
func (r *Registry) Broadcast(a action.Action) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.streams))
	for k := range r.streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var subs []entry
	for _, k := range keys {
		subs = append(subs, r.streams[k]...)
	}
	r.mu.Unlock()

	for _, e := range subs {
		e.fn(a)
	}
}

func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.streams))
	for k := range r.streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) Len(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams[key])
}

// Close drops every subscription. Later subscribes are no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.streams = map[string][]entry{}
	r.mu.Unlock()
}
