package queue

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel

	// publishing on one channel from many goroutines is not safe
	publishMu sync.Mutex
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: channel,
	}, nil
}

func (r *RabbitMQ) DeclareQueue(name string, durable bool, args amqp.Table) error {
	_, err := r.Channel.QueueDeclare(name, durable, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare a %s queue: %w", name, err)
	}
	return nil
}

// DeclareWithDLQ declares queueName with dead-lettering into dlqName, and dlqName itself.
func (r *RabbitMQ) DeclareWithDLQ(queueName, dlqName string) error {
	if err := r.DeclareQueue(dlqName, true, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlqName,
	}
	return r.DeclareQueue(queueName, true, args)
}

func (r *RabbitMQ) Publish(ctx context.Context, queueName string, msg amqp.Publishing) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	if err := r.Channel.PublishWithContext(ctx, "", queueName, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message in queue %s: %w", queueName, err)
	}
	return nil
}

func (r *RabbitMQ) Consume(queueName, consumerTag string) (<-chan amqp.Delivery, error) {
	delivery, err := r.Channel.Consume(queueName, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s queue: %w", queueName, err)
	}

	return delivery, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.Channel.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := r.Conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
