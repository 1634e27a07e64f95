// Package redisbus publishes domain events to Redis pub/sub channels so other
// processes (customer-facing gateways, analytics) can consume the same stream
// the in-process subscribers see. One channel per event type, prefixed with
// "fulfillment.".
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"

	"fulfillment/internal/core/domain/events"

	"github.com/redis/go-redis/v9"
)

// Publisher forwards domain events to Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher and verifies the connection with a ping.
func NewPublisher(addr, password string, db int) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Publisher{client: client}, nil
}

// Publish implements ports.EventPublisher. The event is serialized as JSON
// onto the channel named after its type.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := "fulfillment." + string(event.EventType())
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
