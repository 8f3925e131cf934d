// Command ansdash serves the nightly recharge dashboard API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ans-recharge-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/ans-recharge-service/internal/adapter/kafka"
	"github.com/couchcryptid/ans-recharge-service/internal/adapter/polar"
	"github.com/couchcryptid/ans-recharge-service/internal/advisor"
	"github.com/couchcryptid/ans-recharge-service/internal/chart"
	"github.com/couchcryptid/ans-recharge-service/internal/config"
	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := polar.NewClient(cfg.RechargeURL, cfg.RechargeTimeout, metrics, logger)

	// Assessment publishing is feature-flagged via KAFKA_BROKERS.
	var publisher domain.AssessmentPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaAssessmentTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("assessment publishing disabled")
	}

	adv := advisor.New(source, publisher, advisor.Options{
		Days: cfg.SyntheticDays,
		Seed: cfg.SyntheticSeed,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, adv, adv, chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()
	adv.MarkReady()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
