package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/invocation"
)

// Publisher is the part of RabbitMQ the producer needs.
type Publisher interface {
	Publish(ctx context.Context, queueName string, msg amqp.Publishing) error
}

type Producer struct {
	client    Publisher
	queueName string
	logger    *logrus.Entry
}

// NewProducer returns a producer for queueName. Declaring the queue is
// left to the caller so the producer can run against any Publisher.
func NewProducer(client Publisher, queueName string, logger *logrus.Entry) *Producer {
	return &Producer{
		client:    client,
		queueName: queueName,
		logger:    logger,
	}
}

// PublishExtraction enqueues a workflow-style envelope for fileName and
// returns the job id, which is the message id of the publishing.
func (p *Producer) PublishExtraction(ctx context.Context, fileName, requestedBy string) (string, error) {
	body, err := invocation.WorkflowEnvelope(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to build envelope: %w", err)
	}

	jobID := uuid.New().String()
	headers := amqp.Table{}
	if requestedBy != "" {
		headers["requested_by"] = requestedBy
	}

	err = p.client.Publish(ctx, p.queueName, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Headers:      headers,
		MessageId:    jobID,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish job: %w", err)
	}

	p.logger.WithFields(logrus.Fields{"job_id": jobID, "file_name": fileName}).Info("✓ Job published")
	return jobID, nil
}

// Reply publishes resp to replyTo, correlated with the request's id.
func (p *Producer) Reply(ctx context.Context, replyTo, correlationID string, resp *invocation.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	return p.client.Publish(ctx, replyTo, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		CorrelationId: correlationID,
		Timestamp:     time.Now(),
	})
}
