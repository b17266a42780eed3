package broker

import (
	"context"
	"testing"
	"time"

	"github.com/Datle-2003/video-subtitle-generator/internal/config"
)

func TestMemoryBrokerPublishConsume(t *testing.T) {
	b := NewMemoryBroker(4)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := b.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		if err := b.Publish(ctx, id); err != nil {
			t.Fatalf("Publish(%s): %v", id, err)
		}
	}

	for _, want := range ids {
		select {
		case got := <-out:
			if got != want {
				t.Errorf("consumed %q, want %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestMemoryBrokerConsumeStopsOnCancel(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out, err := b.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	cancel()
	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected channel close after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("consume channel did not close after cancel")
	}
}

func TestMemoryBrokerPublishAfterClose(t *testing.T) {
	b := NewMemoryBroker(1)
	b.Close()
	if err := b.Publish(context.Background(), "x"); err == nil {
		t.Fatal("expected error publishing to a closed broker")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	b, err := New(config.QueueConfig{Backend: "memory", BufferSize: 1})
	if err != nil {
		t.Fatalf("New(memory): %v", err)
	}
	b.Close()

	if _, err := New(config.QueueConfig{Backend: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := New(config.QueueConfig{Backend: "redis"}); err == nil {
		t.Fatal("expected error for redis backend without URL")
	}
}
