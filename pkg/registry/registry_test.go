package registry

import (
	"testing"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_InsertionOrder(t *testing.T) {
	r := New()
	var got []string
	sub := r.Subscribe("a->")
	sub(func(a action.Action) { got = append(got, "first:"+a.Type) })
	sub(func(a action.Action) { got = append(got, "second:"+a.Type) })

	require.True(t, r.Publish("a->", action.Action{Type: "X"}))
	require.Equal(t, []string{"first:X", "second:X"}, got)
	require.Equal(t, 2, r.Len("a->"))
}

func TestUnsubscribe_LastListenerDeletesKey(t *testing.T) {
	r := New()
	calls := 0
	unsub := r.Subscribe("a->")(func(action.Action) { calls++ })
	require.Equal(t, []string{"a->"}, r.Keys())

	unsub()
	require.Empty(t, r.Keys())
	require.False(t, r.Publish("a->", action.Action{Type: "X"}))

	r.Broadcast(action.Action{Type: "X"})
	require.Equal(t, 0, calls)

	// idempotent
	unsub()
	require.Empty(t, r.Keys())
}

func TestUnsubscribe_RemovesOnlyThatListener(t *testing.T) {
	r := New()
	var got []string
	sub := r.Subscribe("a->")
	u1 := sub(func(action.Action) { got = append(got, "one") })
	sub(func(action.Action) { got = append(got, "two") })

	u1()
	u1()
	require.Equal(t, 1, r.Len("a->"))
	r.Publish("a->", action.Action{Type: "X"})
	require.Equal(t, []string{"two"}, got)
}

func TestResubscribe_CreatesFreshList(t *testing.T) {
	r := New()
	unsub := r.Subscribe("a->")(func(action.Action) {})
	unsub()

	got := 0
	r.Subscribe("a->")(func(action.Action) { got++ })
	require.Equal(t, 1, r.Len("a->"))
	r.Publish("a->", action.Action{Type: "X"})
	require.Equal(t, 1, got)
}

func TestBroadcast_AllKeys(t *testing.T) {
	r := New()
	seen := map[string]action.Action{}
	r.Subscribe("a->")(func(a action.Action) { seen["a"] = a })
	r.Subscribe("b->")(func(a action.Action) { seen["b"] = a })

	r.Broadcast(action.Action{Type: "INC"})
	require.Equal(t, action.Action{Type: "INC"}, seen["a"])
	require.Equal(t, action.Action{Type: "INC"}, seen["b"])
}

func TestListener_MayUnsubscribeDuringDelivery(t *testing.T) {
	r := New()
	var unsub func()
	calls := 0
	unsub = r.Subscribe("a->")(func(action.Action) {
		calls++
		unsub()
	})
	r.Publish("a->", action.Action{Type: "X"})
	r.Publish("a->", action.Action{Type: "X"})
	require.Equal(t, 1, calls)
	require.Empty(t, r.Keys())
}

func TestClose(t *testing.T) {
	r := New()
	r.Subscribe("a->")(func(action.Action) {})
	r.Close()
	require.Empty(t, r.Keys())

	unsub := r.Subscribe("b->")(func(action.Action) {})
	require.Empty(t, r.Keys())
	unsub()
}
