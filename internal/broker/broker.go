// Package broker moves job IDs between the API process and the worker
// loop. The memory backend serves single-process deployments; redis and
// rabbitmq let separate worker processes share one queue.
package broker

import (
	"context"
	"fmt"

	"github.com/Datle-2003/video-subtitle-generator/internal/config"
)

// Broker hands job IDs from producers to the single consumer loop.
type Broker interface {
	// Publish makes a job ID available to the consumer. It must be safe
	// for concurrent use.
	Publish(ctx context.Context, jobID string) error
	// Consume returns a channel of job IDs. The channel closes when the
	// context is cancelled or the broker shuts down.
	Consume(ctx context.Context) (<-chan string, error)
	Close() error
}

// New builds the broker selected by the queue configuration.
func New(cfg config.QueueConfig) (Broker, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBroker(cfg.BufferSize), nil
	case "redis":
		return NewRedisBroker(cfg.RedisURL, cfg.QueueName)
	case "rabbitmq":
		return NewRabbitMQBroker(cfg.AMQPURL, cfg.QueueName)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
