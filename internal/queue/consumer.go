package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "extraction-worker"

type Consumer struct {
	client    *RabbitMQ
	queueName string
}

// NewConsumer declares the extraction queue and its DLQ and limits
// unacknowledged deliveries to prefetch.
func NewConsumer(client *RabbitMQ, queueName, dlqName string, prefetch int) (*Consumer, error) {
	if err := client.DeclareWithDLQ(queueName, dlqName); err != nil {
		return nil, err
	}

	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		client:    client,
		queueName: queueName,
	}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	return c.client.Consume(c.queueName, consumerTag)
}

func (c *Consumer) QueueName() string {
	return c.queueName
}
