package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/config"
	"github.com/amrrdev/officetext/internal/invocation"
	"github.com/amrrdev/officetext/internal/logging"
	"github.com/amrrdev/officetext/internal/parser"
	"github.com/amrrdev/officetext/internal/pipeline"
	"github.com/amrrdev/officetext/internal/queue"
	"github.com/amrrdev/officetext/internal/router"
	"github.com/amrrdev/officetext/internal/status"
	"github.com/amrrdev/officetext/internal/storage"
	"github.com/amrrdev/officetext/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("Worker stopped with error: %v", err)
	}

	logger.Info("👋 Worker shut down gracefully")
}

// run owns every connection, so its deferred closes happen before main exits.
func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	storageClient, err := storage.NewStorage(ctx, &storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("✓ Connected to MinIO")

	rt, err := router.New(cfg.Extensions)
	if err != nil {
		return fmt.Errorf("invalid extension configuration: %w", err)
	}

	registry := parser.NewRegistry(parser.Options{TikaURL: cfg.TikaURL})
	if err := registry.Warm(ctx); err != nil {
		logger.WithError(err).Warn("Extractor warm-up failed, retrying on first use")
	}

	p := pipeline.New(
		pipeline.Config{PrefixProcessed: cfg.PrefixProcessed, ScratchDir: cfg.ScratchDir},
		storageClient,
		rt,
		registry,
		logging.For(logger, "pipeline"),
	)

	if cfg.RedisAddr != "" {
		client, err := status.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		tracker := status.NewTracker(client, cfg.StatusTTL, logging.For(logger, "status"))
		defer tracker.Close()

		p.SetTracker(tracker)
		logger.Info("✓ Connected to Redis")
	}

	rabbitClient, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()
	logger.Info("✓ Connected to RabbitMQ")

	consumer, err := queue.NewConsumer(rabbitClient, cfg.QueueName, cfg.DeadLetterQueue, cfg.WorkerConcurrency*2)
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}

	messages, err := consumer.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	logger.Infof("✓ Consuming %s (dead letters to %s)", consumer.QueueName(), cfg.DeadLetterQueue)

	replies := queue.NewProducer(rabbitClient, cfg.QueueName, logging.For(logger, "producer"))
	invoker := invocation.NewInvoker(p, logging.For(logger, "invocation"))

	extractionWorker := worker.NewExtractionWorker(invoker, replies, cfg.WorkerConcurrency, logging.For(logger, "worker"))

	return extractionWorker.Run(ctx, messages)
}
