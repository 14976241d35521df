package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"

	"github.com/Kr4uzr/movie-catalog/internal/upstream"
	"github.com/Kr4uzr/movie-catalog/pkg/db"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// BreakerReporter exposes the provider circuit breaker.
type BreakerReporter interface {
	BreakerState() upstream.State
	BreakerStats() upstream.BreakerStats
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string                `json:"status"` // healthy, degraded, unhealthy
	Service   string                `json:"service"`
	Version   string                `json:"version"`
	Timestamp int64                 `json:"timestamp"`
	Storage   StorageStatus         `json:"storage"`
	Provider  upstream.BreakerStats `json:"provider"`
}

// StorageStatus reports the store probe.
type StorageStatus struct {
	Status  string `json:"status"`  // up, down
	Latency int64  `json:"latency"` // ms
	Error   string `json:"error,omitempty"`
}

// HealthChecker probes the store and reads the provider breaker. The store
// being down makes the service unhealthy; a tripped breaker only degrades it,
// since favorites can still be listed and removed.
type HealthChecker struct {
	store    *db.HealthChecker
	provider BreakerReporter
	service  string
	version  string
}

// NewHealthChecker creates a health checker.
func NewHealthChecker(store db.Pinger, provider BreakerReporter, service, version string) *HealthChecker {
	return &HealthChecker{
		store:    db.NewHealthChecker(store, 2*time.Second),
		provider: provider,
		service:  service,
		version:  version,
	}
}

// Check runs the probes concurrently.
func (hc *HealthChecker) Check(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: time.Now().Unix(),
	}

	var storeHealth db.ConnectionHealth
	var wg conc.WaitGroup
	wg.Go(func() {
		storeHealth = hc.store.Check(ctx)
	})
	wg.Go(func() {
		resp.Provider = hc.provider.BreakerStats()
	})
	wg.Wait()

	resp.Storage = StorageStatus{
		Status:  "up",
		Latency: storeHealth.ResponseTime.Milliseconds(),
		Error:   storeHealth.Error,
	}

	switch {
	case !storeHealth.Healthy:
		resp.Storage.Status = "down"
		resp.Status = StatusUnhealthy
	case resp.Provider.State != upstream.StateClosed.String():
		resp.Status = StatusDegraded
	default:
		resp.Status = StatusHealthy
	}
	return resp
}

// Handle serves GET /health: 503 when unhealthy, 200 otherwise.
func (hc *HealthChecker) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := hc.Check(ctx)
	status := http.StatusOK
	if resp.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
