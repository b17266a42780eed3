package broker

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQBroker queues job IDs on a durable AMQP queue with persistent
// messages, so queued work survives a broker restart.
type RabbitMQBroker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewRabbitMQBroker(url, queueName string) (*RabbitMQBroker, error) {
	if url == "" {
		return nil, fmt.Errorf("rabbitmq broker: URL not configured")
	}
	if queueName == "" {
		queueName = "subtitle_jobs"
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	// One unacked message at a time keeps the worker sequential.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &RabbitMQBroker{conn: conn, channel: ch, queue: queueName}, nil
}

func (b *RabbitMQBroker) Publish(ctx context.Context, jobID string) error {
	return b.channel.PublishWithContext(ctx,
		"",      // default exchange
		b.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(jobID),
		},
	)
}

func (b *RabbitMQBroker) Consume(ctx context.Context) (<-chan string, error) {
	deliveries, err := b.channel.Consume(
		b.queue,
		"",    // consumer tag
		false, // autoAck, acked after handoff
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("amqp consume: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- string(d.Body):
					if err := d.Ack(false); err != nil {
						log.Printf("[broker] ack failed: %v", err)
					}
				case <-ctx.Done():
					d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RabbitMQBroker) Close() error {
	if err := b.channel.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}
