// Package server assembles the HTTP router, the optional gRPC health
// endpoint and the lifecycle of both.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kr4uzr/movie-catalog/internal/handler"
	"github.com/Kr4uzr/movie-catalog/internal/middleware"
	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// RouterDeps is everything the router needs.
type RouterDeps struct {
	Favorites handler.FavoriteService
	Movies    handler.MovieService
	Health    *HealthChecker
	Logger    logger.Logger

	CORSOrigins []string
	RateLimit   config.RateLimitConfig

	// Optional observability. A nil Tracer uses the global one; nil
	// instruments skip request metrics.
	Tracer          trace.Tracer
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	MetricsHandler  http.Handler
}

// NewRouter builds the gin engine. The API is served both at the root and
// under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("catalog-svc")
	}

	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.Tracing(tracer, otel.GetTextMapPropagator()),
		middleware.Logging(deps.Logger),
		middleware.CORS(deps.CORSOrigins),
	)
	if deps.RequestCounter != nil && deps.RequestDuration != nil {
		router.Use(middleware.Metrics(deps.RequestCounter, deps.RequestDuration))
	}

	if deps.Health != nil {
		router.GET("/health", deps.Health.Handle)
	}
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	var limiter *middleware.RateLimiter
	if deps.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(deps.RateLimit.RequestsPerSecond, deps.RateLimit.Burst)
	}

	favoriteHandler := handler.NewFavoriteHandler(deps.Favorites, deps.Logger)
	movieHandler := handler.NewMovieHandler(deps.Movies, deps.Logger)

	for _, prefix := range []string{"", "/api"} {
		api := router.Group(prefix)
		if limiter != nil {
			api.Use(limiter.Limit())
		}

		api.GET("/favorites", favoriteHandler.ListFavorites)
		api.POST("/favorites", favoriteHandler.AddFavorite)
		api.GET("/favorites/:id", favoriteHandler.GetFavorite)
		api.DELETE("/favorites/:id", favoriteHandler.RemoveFavorite)

		api.GET("/movies/search", movieHandler.Search)
		api.GET("/movies/top-rated", movieHandler.TopRated)
		api.GET("/movies/:external_id", movieHandler.Detail)
	}

	return router
}
