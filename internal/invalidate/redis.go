package invalidate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel subscribers listen on.
const DefaultChannel = "reflect:invalidate"

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Message is the payload published per invalidation.
type Message struct {
	Views []string  `json:"views"`
	At    time.Time `json:"at"`
}

// Redis publishes invalidations on a pub/sub channel.
type Redis struct {
	pub     publisher
	channel string
	now     func() time.Time
}

// NewRedis constructs a publishing invalidator; empty channel means DefaultChannel.
func NewRedis(pub publisher, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{pub: pub, channel: channel, now: time.Now}
}

// Invalidate publishes the views; an empty list publishes nothing.
func (r *Redis) Invalidate(ctx context.Context, views ...string) error {
	if len(views) == 0 {
		return nil
	}
	b, err := json.Marshal(Message{Views: views, At: r.now().UTC()})
	if err != nil {
		return err
	}
	return r.pub.Publish(ctx, r.channel, string(b)).Err()
}
