package store

import (
	"testing"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/stretchr/testify/require"
)

func counter(state any, a action.Action) any {
	n, _ := state.(int)
	if a.Type == "INC" {
		return n + 1
	}
	return n
}

func TestDispatch_Reduces(t *testing.T) {
	s := New(counter, 0)
	ret := s.Dispatch(action.Action{Type: "INC"})
	require.Equal(t, action.Action{Type: "INC"}, ret)
	require.Equal(t, 1, s.GetState())
}

func TestMiddleware_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(api API) func(next action.Dispatch) action.Dispatch {
			return func(next action.Dispatch) action.Dispatch {
				return func(a action.Action) any {
					order = append(order, name+"-before")
					r := next(a)
					order = append(order, name+"-after")
					return r
				}
			}
		}
	}
	s := New(counter, 0, mw("outer"), mw("inner"))
	s.Dispatch(action.Action{Type: "INC"})
	require.Equal(t, []string{"outer-before", "inner-before", "inner-after", "outer-after"}, order)
}

func TestMiddleware_APIDispatchReentersChain(t *testing.T) {
	seen := 0
	mw := func(api API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) any {
				seen++
				if a.Type == "DOUBLE" {
					api.Dispatch(action.Action{Type: "INC"})
					return api.Dispatch(action.Action{Type: "INC"})
				}
				return next(a)
			}
		}
	}
	s := New(counter, 0, mw)
	s.Dispatch(action.Action{Type: "DOUBLE"})
	require.Equal(t, 2, s.GetState())
	require.Equal(t, 3, seen)
}

func TestSubscribe(t *testing.T) {
	s := New(counter, 0)
	var seen []int
	unsub := s.Subscribe(func() { seen = append(seen, s.GetState().(int)) })
	s.Dispatch(action.Action{Type: "INC"})
	unsub()
	unsub()
	s.Dispatch(action.Action{Type: "INC"})
	require.Equal(t, []int{1}, seen)
}
