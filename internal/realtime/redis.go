package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iTeLLiiX/CraftConnect/internal/config"
	"github.com/iTeLLiiX/CraftConnect/internal/metrics"
)

const channel = "craftconnect:messages"

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisBus routes events through a Redis pub/sub channel so every instance
// sees every event; local subscriptions are kept in an embedded MemoryBus
// fed by the channel reader.
type RedisBus struct {
	client *redis.Client
	local  *MemoryBus
	logger *zerolog.Logger
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBus(ctx context.Context, client *redis.Client, logger *zerolog.Logger) (*RedisBus, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	pubsub := client.Subscribe(ctx, channel)
	// Force the subscription before first publish.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	b := &RedisBus{
		client: client,
		local:  NewMemoryBus(),
		logger: logger,
		pubsub: pubsub,
		done:   make(chan struct{}),
	}
	go b.run()
	return b, nil
}

func (b *RedisBus) run() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			b.logger.Error().Err(err).Msg("realtime: bad event payload")
			continue
		}
		b.local.dispatch(e)
	}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	metrics.IncRealtimeEvent(string(e.Type))
	// The event comes back through the channel reader for local delivery.
	return nil
}

func (b *RedisBus) Subscribe(f Filter, fn func(Event)) (*Subscription, error) {
	return b.local.Subscribe(f, fn)
}

// Close tears down the channel reader and every local subscription.
func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	b.local.Close()
	return err
}
