package broker

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBroker is a channel-backed broker for single-process deployments.
type MemoryBroker struct {
	ch     chan string
	mu     sync.Mutex
	closed bool
}

func NewMemoryBroker(bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &MemoryBroker{ch: make(chan string, bufferSize)}
}

func (b *MemoryBroker) Publish(ctx context.Context, jobID string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("broker closed")
	}
	b.mu.Unlock()

	select {
	case b.ch <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Consume(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-b.ch:
				if !ok {
					return
				}
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
	return nil
}
