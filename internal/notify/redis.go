package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus publishes events on a Redis channel and relays the channel into
// the local hub, so an event raised on one instance reaches sockets held by
// every instance.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   Emitter
	log     *zap.Logger
}

func NewRedisBus(client *redis.Client, channel string, local Emitter, log *zap.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		local:   local,
		log:     log.With(zap.String("component", "redis_bus"), zap.String("channel", channel)),
	}
}

func (b *RedisBus) Emit(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Name, err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Name, err)
	}
	return nil
}

// Run relays published events into the local emitter until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info("Relaying events from Redis")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.relay(ctx, msg.Payload)
		}
	}
}

func (b *RedisBus) relay(ctx context.Context, payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.log.Warn("Dropping malformed event", zap.Error(err))
		return
	}

	if err := b.local.Emit(ctx, event); err != nil {
		b.log.Warn("Failed to relay event", zap.Error(err), zap.String("event", event.Name))
	}
}
