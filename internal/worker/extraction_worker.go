package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/amrrdev/officetext/internal/invocation"
)

var ErrDeliveriesClosed = errors.New("delivery channel closed")

type Invoker interface {
	Invoke(ctx context.Context, raw []byte) (*invocation.Response, error)
}

type Replier interface {
	Reply(ctx context.Context, replyTo, correlationID string, resp *invocation.Response) error
}

// ExtractionWorker runs a fixed pool of goroutines over one delivery
// channel. Every delivery gets a single attempt: success is acked, failure
// is nacked without requeue so the broker dead-letters it.
type ExtractionWorker struct {
	invoker       Invoker
	replier       Replier
	concurrency   int
	statsInterval time.Duration
	logger        *logrus.Entry

	processed atomic.Int64
	failed    atomic.Int64
}

func NewExtractionWorker(invoker Invoker, replier Replier, concurrency int, logger *logrus.Entry) *ExtractionWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExtractionWorker{
		invoker:       invoker,
		replier:       replier,
		concurrency:   concurrency,
		statsInterval: 30 * time.Second,
		logger:        logger,
	}
}

// Run blocks until ctx is cancelled, which is a clean stop, or the
// delivery channel closes, which returns ErrDeliveriesClosed. In-flight
// deliveries are finished before Run returns.
func (w *ExtractionWorker) Run(ctx context.Context, messages <-chan amqp.Delivery) error {
	w.logger.Infof("🚀 Starting extraction worker with %d concurrent workers", w.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i
		g.Go(func() error {
			return w.loop(gctx, workerID, messages)
		})
	}

	stop := make(chan struct{})
	go w.statsReporter(stop)

	err := g.Wait()
	close(stop)
	w.logStats()

	if ctx.Err() != nil {
		w.logger.Info("⏹️  Workers stopped")
		return nil
	}
	return err
}

// Stats returns the number of succeeded and failed deliveries so far.
func (w *ExtractionWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

func (w *ExtractionWorker) loop(ctx context.Context, workerID int, messages <-chan amqp.Delivery) error {
	w.logger.Debugf("👷 Worker %d started", workerID)

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				w.logger.Warnf("👷 Worker %d stopped (channel closed)", workerID)
				return ErrDeliveriesClosed
			}
			// a started delivery finishes even during shutdown
			w.handle(context.WithoutCancel(ctx), workerID, msg)

		case <-ctx.Done():
			w.logger.Debugf("👷 Worker %d stopped (context cancelled)", workerID)
			return nil
		}
	}
}

func (w *ExtractionWorker) handle(ctx context.Context, workerID int, msg amqp.Delivery) {
	start := time.Now()
	log := w.logger.WithFields(logrus.Fields{
		"worker":     workerID,
		"message_id": msg.MessageId,
	})

	resp, err := w.invoker.Invoke(ctx, msg.Body)
	if err != nil {
		w.failed.Add(1)
		log.WithError(err).Error("❌ Failed to process delivery, sending to DLQ")

		w.reply(ctx, log, msg, invocation.NewErrorResponse(invocation.StatusCode(err), err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Warn("⚠️  Failed to nack message")
		}
		return
	}

	w.reply(ctx, log, msg, resp)
	if err := msg.Ack(false); err != nil {
		log.WithError(err).Warn("⚠️  Failed to ack message")
	}

	w.processed.Add(1)
	log.WithField("duration", time.Since(start)).Info("✅ Delivery processed")
}

func (w *ExtractionWorker) reply(ctx context.Context, log *logrus.Entry, msg amqp.Delivery, resp *invocation.Response) {
	if msg.ReplyTo == "" || w.replier == nil {
		return
	}

	correlationID := msg.CorrelationId
	if correlationID == "" {
		correlationID = msg.MessageId
	}

	if err := w.replier.Reply(ctx, msg.ReplyTo, correlationID, resp); err != nil {
		log.WithError(err).WithField("reply_to", msg.ReplyTo).Warn("⚠️  Failed to publish reply")
	}
}

func (w *ExtractionWorker) statsReporter(stop <-chan struct{}) {
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.logStats()
		case <-stop:
			return
		}
	}
}

func (w *ExtractionWorker) logStats() {
	processed, failed := w.Stats()
	w.logger.WithFields(logrus.Fields{
		"processed": processed,
		"failed":    failed,
	}).Info("📊 Worker stats")
}
