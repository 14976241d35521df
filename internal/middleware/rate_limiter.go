package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
)

const maxTrackedClients = 10000

// RateLimiter limits inbound requests per client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int

	cleanupInterval time.Duration
	lastCleanup     time.Time
	cleanupMu       sync.Mutex
}

// NewRateLimiter allows perSecond requests per IP with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:        make(map[string]*rate.Limiter),
		rate:            rate.Limit(perSecond),
		burst:           burst,
		cleanupInterval: 10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[ip]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists = rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = limiter
	}
	return limiter
}

// cleanup drops every limiter once the table grows past maxTrackedClients.
func (rl *RateLimiter) cleanup() {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) < rl.cleanupInterval {
		return
	}

	rl.mu.Lock()
	if len(rl.limiters) > maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	rl.mu.Unlock()
	rl.lastCleanup = now
}

// Limit is the gin middleware.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.cleanup()

		if !rl.limiter(c.ClientIP()).Allow() {
			httputil.AbortWithError(c, apperrors.ErrTooManyRequests.WithMessage("Muitas requisições, tente novamente em instantes"))
			return
		}

		c.Next()
	}
}
