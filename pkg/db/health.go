package db

import (
	"context"
	"fmt"
	"time"
)

// Pinger is implemented by every store handle (pgxpool.Pool, repository stores).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionHealth represents the health status of a single connection.
type ConnectionHealth struct {
	Healthy      bool          `json:"healthy"`
	ResponseTime time.Duration `json:"response_time_ms"`
	Error        string        `json:"error,omitempty"`
}

// HealthChecker performs health checks on a database handle.
type HealthChecker struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthChecker creates a new health checker. A zero timeout defaults to 2s.
func NewHealthChecker(db Pinger, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{db: db, timeout: timeout}
}

// Check pings the database within the checker's timeout.
func (h *HealthChecker) Check(ctx context.Context) ConnectionHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	health := ConnectionHealth{Healthy: true}
	if err := h.db.Ping(ctx); err != nil {
		health.Healthy = false
		health.Error = fmt.Sprintf("ping failed: %v", err)
	}
	health.ResponseTime = time.Since(start)
	return health
}
