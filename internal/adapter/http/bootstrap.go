package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"todopop/internal/adapter/database"
	"todopop/internal/adapter/http/routes"
	"todopop/internal/adapter/pubsub"
	"todopop/internal/core/port"
	"todopop/pkg/cache"
	"todopop/pkg/config"
	"todopop/pkg/metrics"
)

type ServerDeps struct {
	Logger    zerolog.Logger
	Metrics   *metrics.AppMetrics
	Registry  prometheus.Gatherer
	Telemetry port.Telemetry
}

// StartServer wires the storage, change feed, cache and router, then serves
// until ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.AppConfig, deps ServerDeps) error {
	db, err := database.NewDB(cfg.DatabaseURL, cfg.DatabasePath, deps.Logger)

	if err != nil {
		return err
	}

	defer db.Close()

	hub := pubsub.NewHub()
	defer hub.Close()

	var feed port.ChangeFeed = hub

	if cfg.RedisURL != "" {
		redisFeed, err := pubsub.NewRedisFeed(ctx, cfg.RedisURL, hub, deps.Logger)

		if err != nil {
			return err
		}

		defer redisFeed.Close()

		feed = redisFeed
		deps.Logger.Info().Msg("change feed bridged over redis")
	}

	responseCache := cache.NewResponseCache(cfg.ListCacheTTL, deps.Logger, deps.Metrics)
	responseCache.InvalidateOn(ctx, feed)

	container := NewContainer(db, feed, deps.Telemetry, deps.Logger, deps.Metrics)

	router := routes.SetupRouter(routes.HandlersConfig{
		TodoHandler:      container.TodoHandler,
		SubscribeHandler: container.SubscribeHandler,
	}, routes.RouterDeps{
		Logger:        deps.Logger,
		Metrics:       deps.Metrics,
		Registry:      deps.Registry,
		ResponseCache: responseCache,
		Config:        cfg,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the subscribe route holds its response open for
		// the client's entire session.
	}

	errCh := make(chan error, 1)

	go func() {
		deps.Logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Closing the hub ends every open subscription stream, which lets
	// Shutdown drain those connections instead of timing out on them.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
