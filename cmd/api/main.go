package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/auth"
	"github.com/amrrdev/officetext/internal/config"
	"github.com/amrrdev/officetext/internal/handler"
	"github.com/amrrdev/officetext/internal/invocation"
	"github.com/amrrdev/officetext/internal/logging"
	"github.com/amrrdev/officetext/internal/parser"
	"github.com/amrrdev/officetext/internal/pipeline"
	"github.com/amrrdev/officetext/internal/queue"
	"github.com/amrrdev/officetext/internal/router"
	"github.com/amrrdev/officetext/internal/server"
	"github.com/amrrdev/officetext/internal/service"
	"github.com/amrrdev/officetext/internal/status"
	"github.com/amrrdev/officetext/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("API stopped with error: %v", err)
	}

	logger.Info("👋 API shut down gracefully")
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
	go func() {
		if err := registry.Warm(ctx); err != nil {
			logger.WithError(err).Warn("Extractor warm-up failed, retrying on first use")
			return
		}
		logger.Info("✓ Extractors ready")
	}()

	p := pipeline.New(
		pipeline.Config{PrefixProcessed: cfg.PrefixProcessed, ScratchDir: cfg.ScratchDir},
		storageClient,
		rt,
		registry,
		logging.For(logger, "pipeline"),
	)

	var statuses service.StatusReader
	if cfg.RedisAddr != "" {
		client, err := status.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		tracker := status.NewTracker(client, cfg.StatusTTL, logging.For(logger, "status"))
		defer tracker.Close()

		p.SetTracker(tracker)
		statuses = tracker
		logger.Info("✓ Connected to Redis")
	}

	var jobs service.JobPublisher
	if rabbitClient, err := queue.NewRabbitMQ(cfg.RabbitMQURL); err != nil {
		logger.WithError(err).Warn("RabbitMQ unavailable, enqueue endpoint disabled")
	} else {
		defer rabbitClient.Close()
		if err := rabbitClient.DeclareWithDLQ(cfg.QueueName, cfg.DeadLetterQueue); err != nil {
			return fmt.Errorf("failed to declare queues: %w", err)
		}
		jobs = queue.NewProducer(rabbitClient, cfg.QueueName, logging.For(logger, "producer"))
		logger.Infof("✓ Connected to RabbitMQ, queues declared: %s, %s", cfg.QueueName, cfg.DeadLetterQueue)
	}

	var jwtService *auth.Service
	if cfg.JWTSecretKey != "" {
		jwtService = auth.NewService(cfg.JWTSecretKey, cfg.JWTTokenTTL)
	} else {
		logger.Warn("JWT_SECRET_KEY not set, document routes are unauthenticated")
	}

	documentService := service.NewDocument(p, storageClient, statuses, jobs, service.Prefixes{
		Originals: cfg.PrefixOriginals,
		Processed: cfg.PrefixProcessed,
	})
	invoker := invocation.NewInvoker(p, logging.For(logger, "invocation"))
	documentHandler := handler.NewDocumentHandler(documentService, invoker, logging.For(logger, "http"))

	g := server.NewServer(documentHandler, handler.NewHealthHandler(registry), auth.NewMiddleware(jwtService))

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: g,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Infof("🚀 Extraction API starting on %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
