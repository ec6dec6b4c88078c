package events

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Bus publishes mutation events to interested consumers, in-process or not.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe delivers events to handler until ctx is cancelled.
	Subscribe(ctx context.Context, handler func(Event)) error
}

const channelName = "parley:events"

type redisBus struct {
	rdb *goredis.Client
}

// NewRedisBus creates a Bus backed by redis pub/sub. Delivery is
// fire-and-forget: consumers that are down miss events and rely on cache TTL
// to converge.
func NewRedisBus(rdb *goredis.Client) Bus {
	return &redisBus{rdb: rdb}
}

func (b *redisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelName, payload).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

func (b *redisBus) Subscribe(ctx context.Context, handler func(Event)) error {
	sub := b.rdb.Subscribe(ctx, channelName)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			handler(event)
		}
	}
}
