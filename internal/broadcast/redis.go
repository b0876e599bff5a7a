package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the Redis channels used by the API.
const DefaultPrefix = "bloghub:"

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisPublisher PUBLISHes JSON envelopes on prefixed Redis channels.
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	msg, err := NewMessage(channel, event, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.client.Publish(ctx, p.prefix+channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

// Relay subscribes to every prefixed channel and forwards messages to a local sink.
type Relay struct {
	client redis.UniversalClient
	prefix string
	sink   Sink
	log    *slog.Logger
}

func NewRelay(client redis.UniversalClient, prefix string, sink Sink, log *slog.Logger) *Relay {
	return &Relay{client: client, prefix: prefix, sink: sink, log: log}
}

// Run blocks until ctx is cancelled or the subscription breaks.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.log.Info("broadcast relay subscribed", "pattern", r.prefix+"*")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.log.Warn("dropping malformed broadcast", "channel", m.Channel, "error", err)
				continue
			}
			msg.Channel = strings.TrimPrefix(m.Channel, r.prefix)
			r.sink.Deliver(msg)
		}
	}
}
