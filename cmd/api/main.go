package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	api "todopop/internal/adapter/http"
	"todopop/internal/adapter/telemetry"
	"todopop/pkg/config"
	"todopop/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	logger := logging.New(cfg.ServiceName, cfg.Environment)

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger)

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(context.Background())

	tel.AppMetrics.StartSystemMetrics(ctx)

	err = api.StartServer(ctx, cfg, api.ServerDeps{
		Logger:    logger,
		Metrics:   tel.AppMetrics,
		Registry:  tel.PrometheusRegistry,
		Telemetry: tel.Probe,
	})

	if err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}

	logger.Info().Msg("shut down gracefully")
}
