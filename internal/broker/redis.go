package broker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBroker queues job IDs on a Redis list, LPUSH in and BRPOP out.
type RedisBroker struct {
	client *redis.Client
	key    string
}

func NewRedisBroker(url, queueName string) (*RedisBroker, error) {
	if url == "" {
		return nil, fmt.Errorf("redis broker: URL not configured")
	}
	if queueName == "" {
		queueName = "subtitle_jobs"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBroker{client: client, key: queueName}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, jobID string) error {
	return b.client.LPush(ctx, b.key, jobID).Err()
}

func (b *RedisBroker) Consume(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}

			res, err := b.client.BRPop(ctx, 5*time.Second, b.key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				log.Printf("[broker] redis BRPOP error: %v", err)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			// BRPOP returns [key, value]
			if len(res) != 2 {
				continue
			}
			select {
			case out <- res[1]:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
