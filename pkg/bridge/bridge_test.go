package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/router"
	"github.com/go-go-golems/scopectl/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func counter(state any, a action.Action) any {
	n, _ := state.(int)
	if a.Type == "INC" {
		return n + 1
	}
	return n
}

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, NewLogger(zerolog.Nop()))
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func receive(t *testing.T, msgs <-chan *message.Message) action.Action {
	t.Helper()
	select {
	case msg := <-msgs:
		msg.Ack()
		a, err := action.Decode(msg.Payload)
		require.NoError(t, err)
		require.Equal(t, a.Type, msg.Metadata.Get(MetadataActionType))
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
	return action.Action{}
}

func TestTap_PublishesReducedActions(t *testing.T) {
	ps := newPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := ps.Subscribe(ctx, TopicActions)
	require.NoError(t, err)

	nop := zerolog.Nop()
	r := router.New(router.Options{Logger: &nop})
	s := store.New(counter, 0, r.Middleware(), Tap(ps, TopicActions, nop))

	s.Dispatch(action.WrapGlobal(action.Action{Type: "INC"}))
	require.Equal(t, action.Action{Type: "INC"}, receive(t, msgs))
	require.Equal(t, 1, s.GetState())

	// control actions are answered by the router and never tapped
	s.Dispatch(action.GetGlobalState())
	s.Dispatch(process.StartAction(process.StartRequest{FullKey: "a->"}))
	s.Dispatch(action.Action{Type: "DONE"})
	require.Equal(t, action.Action{Type: "DONE"}, receive(t, msgs))
}

func TestTap_SkipsUnserialisable(t *testing.T) {
	ps := newPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := ps.Subscribe(ctx, TopicActions)
	require.NoError(t, err)

	s := store.New(counter, 0, Tap(ps, TopicActions, zerolog.Nop()))
	s.Dispatch(action.Action{Type: "FN", Payload: func() {}})
	s.Dispatch(action.Action{Type: "INC"})
	require.Equal(t, action.Action{Type: "INC"}, receive(t, msgs))
}

func TestFeed_DispatchesDecodedActions(t *testing.T) {
	ps := newPubSub(t)
	nop := zerolog.Nop()
	r := router.New(router.Options{Logger: &nop})
	s := store.New(counter, 0, r.Middleware())

	var notified []string
	r.Registry().Subscribe("a->")(func(a action.Action) { notified = append(notified, a.Type) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Feed(ctx, ps, TopicInbound, s.Dispatch, nop) }()

	require.Eventually(t, func() bool {
		msg := message.NewMessage(watermill.NewUUID(), []byte(`{"type":"INC"}`))
		if err := ps.Publish(TopicInbound, msg); err != nil {
			return false
		}
		return s.GetState().(int) > 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, ps.Publish(TopicInbound, message.NewMessage(watermill.NewUUID(), []byte(`garbage`))))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
	require.NotEmpty(t, notified)
}

func TestLoggerAdapter_With(t *testing.T) {
	l := NewLogger(zerolog.Nop()).With(watermill.LogFields{"a": 1})
	require.NotNil(t, l)
	l.Info("hello", watermill.LogFields{"b": 2})
	l.Error("oops", nil, nil)
}
