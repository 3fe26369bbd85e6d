// Package autolavado assembles the API server: storage, cache, events, services and routes.
package autolavado

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dipaca/autolavado/internal/cache"
	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/events"
	"github.com/dipaca/autolavado/internal/http/middlewarectx"
	"github.com/dipaca/autolavado/internal/lib/jwt"
	"github.com/dipaca/autolavado/internal/lib/sl"
	"github.com/dipaca/autolavado/internal/migrations"
	analyticsservice "github.com/dipaca/autolavado/internal/services/analytics"
	authservice "github.com/dipaca/autolavado/internal/services/auth"
	ledgerservice "github.com/dipaca/autolavado/internal/services/ledger"
	portalservice "github.com/dipaca/autolavado/internal/services/portal"
	servicioservice "github.com/dipaca/autolavado/internal/services/servicios"
	"github.com/dipaca/autolavado/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type closer interface {
	Close() error
}

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     closer
	publisher events.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	catalog := connectCache(ctx, cfg.RedisConnection, logger)
	publisher := connectPublisher(cfg.RabbitMQ, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	owners := NewOwners(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Store:     db,
		Tokens:    jwtMaker,
		Auth:      authservice.NewAuthService(db, jwtMaker),
		Servicios: servicioservice.NewServicioService(db, publisher, logger),
		Ledger: ledgerservice.NewLedgerService(db, owners.Servicio, owners.Item,
			catalog, cfg.CatalogTTL, publisher, logger),
		Analytics: analyticsservice.NewAnalyticsService(db),
		Portal:    portalservice.NewPortalService(db),
		Owners:    owners,
		Metrics:   middlewarectx.NewMetrics(reg),
		Gatherer:  reg,
		RateLimit: cfg.RateLimit,
		CORS:      cfg.CORS,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     catalog,
		publisher: publisher,
	}, nil
}

// catalogCache is what the ledger reads through and what App closes.
type catalogCache interface {
	ledgerservice.Cache
	closer
}

// connectCache falls back to a no-op cache when Redis is not configured or unreachable.
func connectCache(ctx context.Context, cfg config.RedisConnection, logger *slog.Logger) catalogCache {
	if cfg.AddressRedis == "" {
		logger.Info("redis address is empty, catalog cache disabled")
		return cache.Noop{}
	}
	c, err := cache.InitServer(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", sl.Err(err))
		return cache.Noop{}
	}
	return c
}

// connectPublisher falls back to dropping events when RabbitMQ is not configured or unreachable.
func connectPublisher(cfg config.RabbitMQ, logger *slog.Logger) events.Publisher {
	if cfg.URL == "" {
		logger.Info("rabbitmq url is empty, domain events disabled")
		return events.Noop{}
	}
	p, err := events.NewRabbit(cfg)
	if err != nil {
		logger.Warn("rabbitmq unavailable, domain events disabled", sl.Err(err))
		return events.Noop{}
	}
	return p
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.release()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.release()
		return err
	}
}

func (a *App) release() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
