package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/config"
	"github.com/septivank/solar-telemetry-ingest/internal/db"
	"github.com/septivank/solar-telemetry-ingest/internal/httpapi"
	"github.com/septivank/solar-telemetry-ingest/internal/mq"
	"github.com/septivank/solar-telemetry-ingest/internal/preview"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
)

func startServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	router *chi.Mux,
	logger *zap.Logger,
) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServicePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info("starting http server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("failed to shut down http server", zap.Error(err))
				return err
			}
			logger.Info("http server stopped gracefully")
			return nil
		},
	})

	return srv
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideMQConnection connects to RabbitMQ when events are enabled
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	if !cfg.EventsEnabled() {
		logger.Info("RABBITMQ_URL not set, submission events disabled")
		return nil, nil
	}
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvidePublisher creates the submission event publisher. It returns a nil
// interface when events are disabled.
func ProvidePublisher(lc fx.Lifecycle, conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (service.EventPublisher, error) {
	if conn == nil {
		return nil, nil
	}

	publisher, err := mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

// ProvidePreviewStore connects the Redis preview cache when it is enabled
func ProvidePreviewStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*preview.Store, error) {
	if !cfg.PreviewEnabled() {
		logger.Info("REDIS_URL not set, upload previews disabled")
		return nil, nil
	}

	client, err := preview.NewClient(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	store := preview.NewStore(client, cfg.Redis.PreviewTTL, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Previews are optional; an unreachable cache only degrades uploads
			if err := store.Ping(ctx); err != nil {
				logger.Warn("redis ping failed", zap.Error(err))
				return nil
			}
			logger.Info("redis connection established successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// ProvidePreviewCache exposes the preview store to the handlers, or a nil
// interface when it is disabled
func ProvidePreviewCache(store *preview.Store) httpapi.PreviewStore {
	if store == nil {
		return nil
	}
	return store
}

// ProvideRegistry wires every domain on the database pool
func ProvideRegistry(pool *db.Pool, publisher service.EventPublisher, cfg *config.Config, logger *zap.Logger) *service.Registry {
	return service.NewRegistry(pool, publisher, cfg.Upload.HeaderScanRows, logger)
}

// ProvideHealthChecks lists the dependencies /health reports on
func ProvideHealthChecks(pool *db.Pool, conn *mq.Connection, store *preview.Store) map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{
		"database": pool.Ping,
	}
	if conn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if !conn.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	if store != nil {
		checks["redis"] = store.Ping
	}
	return checks
}

// ProvideHandlers creates the HTTP handlers
func ProvideHandlers(
	registry *service.Registry,
	previews httpapi.PreviewStore,
	checks map[string]httpapi.HealthCheck,
	cfg *config.Config,
	logger *zap.Logger,
) *httpapi.Handlers {
	return httpapi.NewHandlers(registry, previews, checks, cfg.Upload.MaxBytes, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(h *httpapi.Handlers, cfg *config.Config, logger *zap.Logger) *chi.Mux {
	return httpapi.NewRouter(h, cfg.HTTP.AllowedOrigins, logger)
}
