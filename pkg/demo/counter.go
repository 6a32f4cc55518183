// Package demo is the counter domain the scopectl commands run: one counter
// per scope, incremented by local actions and cleared by a global reset.
package demo

import (
	"context"
	"sort"
	"time"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/pattern"
	"github.com/go-go-golems/scopectl/pkg/process"
)

const (
	TypeTick      = "TICK"
	TypeIncrement = "INCREMENT"
	TypeDecrement = "DECREMENT"
	TypePause     = "PAUSE"
	// TypeReset is global: it clears every counter.
	TypeReset = "RESET"
)

type Counter struct {
	Count  int  `yaml:"count" json:"count"`
	Ticks  int  `yaml:"ticks" json:"ticks"`
	Paused bool `yaml:"paused,omitempty" json:"paused,omitempty"`
}

type State struct {
	Counters map[string]Counter `yaml:"counters" json:"counters"`
	Resets   int                `yaml:"resets" json:"resets"`
	Last     string             `yaml:"last,omitempty" json:"last,omitempty"`
}

func NewState() State {
	return State{Counters: map[string]Counter{}}
}

// Counter returns the counter of the scope with canonical key key.
func (s State) Counter(key string) Counter {
	return s.Counters[key]
}

func (s State) Keys() []string {
	keys := make([]string, 0, len(s.Counters))
	for k := range s.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Select returns a selector for scope.State that picks the counter of key.
func Select(key string) func(parent any) any {
	return func(parent any) any {
		st, _ := parent.(State)
		return st.Counter(key)
	}
}

// NewReducer returns the counter reducer for local actions carrying prefix.
func NewReducer(prefix string) func(state any, a action.Action) any {
	return func(state any, a action.Action) any {
		st, ok := state.(State)
		if !ok {
			st = NewState()
		}

		if a.Type == TypeReset {
			next := NewState()
			for k, c := range st.Counters {
				next.Counters[k] = Counter{Paused: c.Paused}
			}
			next.Resets = st.Resets + 1
			next.Last = a.Type
			return next
		}

		addr, loc := action.ParseLocal(a.Type, prefix)
		if loc != action.Local {
			return st
		}
		key := addr.Path.String()
		c := st.Counters[key]
		switch addr.BareType {
		case TypeTick:
			c.Count++
			c.Ticks++
		case TypeIncrement:
			c.Count += step(a.Payload)
		case TypeDecrement:
			c.Count -= step(a.Payload)
		case TypePause:
			c.Paused = !c.Paused
		default:
			return st
		}

		next := State{Counters: make(map[string]Counter, len(st.Counters)+1), Resets: st.Resets, Last: a.Type}
		for k, v := range st.Counters {
			next.Counters[k] = v
		}
		next.Counters[key] = c
		return next
	}
}

func step(payload any) int {
	switch v := payload.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}

// Ticker puts a local TICK every interval unless the scope's counter is
// paused. Global resets are logged as they pass by.
func Ticker(interval time.Duration) process.Process {
	return process.Func("ticker", func(ctx context.Context, fx *process.Effects) error {
		fx.Fork(func(fx *process.Effects) error {
			for {
				if _, err := fx.Take(pattern.Any(pattern.Exact(TypeReset))); err != nil {
					return err
				}
				logger := fx.Logger()
				logger.Debug().Msg("counter reset")
			}
		})
		for {
			if err := fx.Sleep(interval); err != nil {
				return err
			}
			if c, _ := fx.Select().(Counter); c.Paused {
				continue
			}
			fx.Put(action.New(TypeTick, nil))
		}
	})
}
