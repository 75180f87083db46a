package report

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Redis publishes events as JSON envelopes on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

// DialRedis creates a Redis publisher and checks the server is reachable.
func DialRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Redis{client: client, channel: channel}, nil
}

// Publish sends ev.
func (r *Redis) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
