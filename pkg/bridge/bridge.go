// Package bridge connects a store to watermill topics: Tap publishes every
// reduced action and Feed dispatches actions read from a topic. Tap and Feed
// must not share a topic on the same store, or actions loop forever.
package bridge

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Tap returns a middleware that publishes each action after the reducers
// ran. Place it after the routing middleware so control actions are already
// answered and envelopes unwrapped.
func Tap(pub message.Publisher, topic string, logger zerolog.Logger) store.Middleware {
	return func(api store.API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) any {
				result := next(a)

				b, err := action.Encode(a)
				if err != nil {
					logger.Debug().Err(err).Str("type", a.Type).Msg("action not serialisable, not tapped")
					return result
				}
				msg := message.NewMessage(watermill.NewUUID(), b)
				msg.Metadata.Set(MetadataActionType, a.Type)
				if a.GlobalType != "" {
					msg.Metadata.Set(MetadataGlobalType, a.GlobalType)
				}
				if err := pub.Publish(topic, msg); err != nil {
					logger.Warn().Err(err).Str("topic", topic).Str("type", a.Type).Msg("publish action")
				}
				return result
			}
		}
	}
}

// Feed dispatches every action read from topic until ctx ends or the
// subscription closes. Messages that do not decode are acked and dropped.
func Feed(ctx context.Context, sub message.Subscriber, topic string, dispatch action.Dispatch, logger zerolog.Logger) error {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", topic)
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
			if err != nil {
				logger.Warn().Err(err).Str("topic", topic).Str("uuid", msg.UUID).Msg("dropping malformed action")
				msg.Ack()
				continue
			}
			dispatch(a)
			msg.Ack()
		}
	}
}
