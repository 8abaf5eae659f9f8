package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amrrdev/officetext/internal/invocation"
	"github.com/amrrdev/officetext/internal/logging"
)

type published struct {
	queue string
	msg   amqp.Publishing
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{queue: queueName, msg: msg})
	return nil
}

func TestPublishExtraction(t *testing.T) {
	pub := &fakePublisher{}
	producer := NewProducer(pub, "extraction", logging.Discard())

	jobID, err := producer.PublishExtraction(context.Background(), "uploads/report.docx", "user-1")
	if err != nil {
		t.Fatalf("PublishExtraction: %v", err)
	}

	if len(pub.sent) != 1 {
		t.Fatalf("published %d messages", len(pub.sent))
	}
	got := pub.sent[0]
	if got.queue != "extraction" {
		t.Errorf("queue = %q", got.queue)
	}
	if got.msg.MessageId != jobID || jobID == "" {
		t.Errorf("MessageId = %q, job id = %q", got.msg.MessageId, jobID)
	}
	if got.msg.DeliveryMode != amqp.Persistent {
		t.Error("job must be persistent")
	}
	if got.msg.Headers["requested_by"] != "user-1" {
		t.Errorf("headers = %v", got.msg.Headers)
	}

	req, err := invocation.Decode(got.msg.Body)
	if err != nil {
		t.Fatalf("published body is not an envelope: %v", err)
	}
	if req.Style != invocation.StyleWorkflow || req.FileName != "uploads/report.docx" {
		t.Errorf("decoded %+v", req)
	}
}

func TestPublishExtractionError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	producer := NewProducer(pub, "extraction", logging.Discard())

	if _, err := producer.PublishExtraction(context.Background(), "a.csv", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestReply(t *testing.T) {
	pub := &fakePublisher{}
	producer := NewProducer(pub, "extraction", logging.Discard())

	resp := &invocation.Response{StatusCode: 200, Headers: map[string]string{"Content-Type": "application/json"}, Body: `{"file_key":"processed/a.txt"}`}
	if err := producer.Reply(context.Background(), "replies", "job-7", resp); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	got := pub.sent[0]
	if got.queue != "replies" || got.msg.CorrelationId != "job-7" {
		t.Errorf("unexpected publishing %+v", got)
	}

	var decoded invocation.Response
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.StatusCode != 200 || decoded.Body != resp.Body {
		t.Errorf("decoded %+v", decoded)
	}
}
