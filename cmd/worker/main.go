package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/healthflow/clinic-api/internal/config"
	"github.com/healthflow/clinic-api/internal/email"
	"github.com/healthflow/clinic-api/internal/repository/postgres"
	"github.com/healthflow/clinic-api/internal/worker"
	"github.com/healthflow/clinic-api/pkg/logger"
	messagingredis "github.com/healthflow/clinic-api/pkg/messaging/redis"
	"github.com/healthflow/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})
	zlog.Logger = *log.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{
		URL:          redisURL(cfg.Redis),
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to broker")
	}
	defer broker.Close()

	m := metrics.NewMetrics(cfg.Metrics.Namespace, "worker")
	outboxRepo := postgres.NewOutboxRepository(postgres.NewBaseRepository(db))

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval(),
		RetryAttempts: cfg.Outbox.MaxRetries,
		RetryDelay:    time.Second,
	}, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	if cfg.SMTP.Enabled {
		notifier := worker.NewNotifier(broker, email.NewSMTPSender(cfg.SMTP), cfg.SMTP.AdminEmail, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notifier.Start(ctx); err != nil {
				log.Error(err, "notifier stopped")
			}
		}()
	}

	metricsSrv := &http.Server{
		Addr:    ":9091",
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	wg.Wait()
}

func redisURL(cfg config.RedisConfig) string {
	if cfg.Password != "" {
		return fmt.Sprintf("redis://:%s@%s/%d", cfg.Password, cfg.Addr(), cfg.DB)
	}
	return fmt.Sprintf("redis://%s/%d", cfg.Addr(), cfg.DB)
}
