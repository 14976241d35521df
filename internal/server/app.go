package server

import (
	"context"
	"fmt"

	"github.com/Kr4uzr/movie-catalog/internal/repository"
	"github.com/Kr4uzr/movie-catalog/internal/service"
	"github.com/Kr4uzr/movie-catalog/internal/upstream"
	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
	"github.com/Kr4uzr/movie-catalog/pkg/telemetry"
)

// App is the fully wired service.
type App struct {
	server  *Server
	log     logger.Logger
	closers []func(context.Context)
}

// NewApp wires telemetry, the store, the provider client, the services and
// the HTTP surface from cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger, version string) (_ *App, err error) {
	app := &App{log: log}
	defer func() {
		if err != nil {
			app.Close(context.Background())
		}
	}()

	tel, shutdownTelemetry, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRate:     cfg.Telemetry.SampleRate,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	app.closers = append(app.closers, func(ctx context.Context) {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", logger.Error(err))
		}
	})

	repo, closeStore, err := repository.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) { closeStore() })

	if cfg.Provider.APIKey == "" {
		log.Warn("Provider API key is not set; provider requests will be rejected")
	}
	tmdb, err := upstream.NewTMDBClient(upstream.ClientConfig{
		BaseURL:  cfg.Provider.BaseURL,
		Language: cfg.Provider.Language,
		APIKey:   cfg.Provider.APIKey,
		Timeout:  cfg.Provider.Timeout,
		BreakerSettings: upstream.BreakerSettings{
			MaxFailures: cfg.Provider.Breaker.MaxFailures,
			Timeout:     cfg.Provider.Breaker.ResetTimeout,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create provider client: %w", err)
	}

	requests, err := tel.NewHTTPRequestCounter()
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	duration, err := tel.NewHTTPDurationHistogram()
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	router := NewRouter(RouterDeps{
		Favorites:       service.NewFavoriteService(repo, tmdb, log),
		Movies:          service.NewMovieService(tmdb, log),
		Health:          NewHealthChecker(repo, tmdb, cfg.Telemetry.ServiceName, version),
		Logger:          log,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.RateLimit,
		Tracer:          tel.Tracer(),
		RequestCounter:  requests,
		RequestDuration: duration,
		MetricsHandler:  tel.MetricsHandler(),
	})

	app.server = New(cfg.Server, router, log)
	return app, nil
}

// Server returns the HTTP/gRPC server.
func (a *App) Server() *Server { return a.server }

// Run serves until ctx is done, then releases every resource.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(context.Background())
	return a.server.Run(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
	a.closers = nil
}
