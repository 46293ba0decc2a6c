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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/di"
	"github.com/adelfree2023-dev/storefront-engine/internal/events"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/config"
	"github.com/adelfree2023-dev/storefront-engine/pkg/database"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
	"github.com/adelfree2023-dev/storefront-engine/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  "stdout",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// The theme registry is static configuration; a variant without an
	// implementation must stop the deployment here, not a page render
	if err := service.ValidateVariants(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.NewEngineMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Degraded but functional: resolution falls back to the
			// repository on every request
			log.Warn("redis unreachable, resolver cache disabled", zap.Error(err))
			redisClient = nil
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
	}

	var publisher events.PlanEventPublisher
	if cfg.Kafka.Enabled() {
		publisher, err = events.NewPlanEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.PlanTopic, log)
		if err != nil {
			return fmt.Errorf("init plan event publisher: %w", err)
		}
		defer publisher.Close()
	}

	container := di.NewContainer(&di.ContainerConfig{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Redis:      redisClient,
		Metrics:    metrics,
		TenantRepo: repository.NewPostgresTenantRepository(db.Pool()),
		PlanRepo:   repository.NewPostgresPlanRepository(db.Pool()),
		Publisher:  publisher,
	})

	if cfg.Kafka.Enabled() {
		consumer, err := events.NewInvalidationConsumer(
			cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.ClientID,
			cfg.Kafka.PlanTopic, container.Catalog, log)
		if err != nil {
			return fmt.Errorf("init invalidation consumer: %w", err)
		}
		defer consumer.Close()
		go consumer.Run(ctx)
	}

	router := newRouter(cfg, log, container, metrics)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
