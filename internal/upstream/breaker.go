package upstream

import (
	"sync"
	"time"

	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerSettings configures a CircuitBreaker.
type BreakerSettings struct {
	MaxFailures int           // consecutive failures that open the breaker
	Timeout     time.Duration // how long the breaker stays open
	MaxRequests int           // trial requests allowed while half-open

	// IsSuccessful decides whether an error counts against the breaker.
	// Defaults to err == nil.
	IsSuccessful  func(err error) bool
	OnStateChange func(from, to State)
}

// CircuitBreaker stops calling a failing dependency for a cool-down period.
type CircuitBreaker struct {
	settings BreakerSettings
	state    State
	counts   counts
	expiry   time.Time
	now      func() time.Time
	mu       sync.Mutex
	logger   logger.Logger
}

type counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// NewCircuitBreaker creates a breaker, filling zero settings with defaults
// (5 failures, 30s, 1 trial request).
func NewCircuitBreaker(settings BreakerSettings, log logger.Logger) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.MaxRequests <= 0 {
		settings.MaxRequests = 1
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool { return err == nil }
	}

	return &CircuitBreaker{
		settings: settings,
		state:    StateClosed,
		now:      time.Now,
		logger:   log,
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// ErrCircuitOpen without calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(cb.settings.IsSuccessful(err))
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.expiry) {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
	case StateHalfOpen:
		if cb.counts.Requests >= uint32(cb.settings.MaxRequests) {
			return ErrCircuitOpen
		}
	}

	cb.counts.Requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		cb.onSuccess()
	} else {
		cb.onFailure()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.counts.TotalSuccesses++
	cb.counts.ConsecutiveSuccesses++
	cb.counts.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= uint32(cb.settings.MaxRequests) {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0

	// one failed trial is enough to reopen
	if cb.state == StateHalfOpen || cb.counts.ConsecutiveFailures >= uint32(cb.settings.MaxFailures) {
		cb.setState(StateOpen)
	}
}

// setState must be called with mu held. Every transition starts a fresh window.
func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	from := cb.state
	cb.state = state
	cb.counts = counts{}
	if state == StateOpen {
		cb.expiry = cb.now().Add(cb.settings.Timeout)
	}

	cb.logger.Warn("Circuit breaker state changed",
		logger.String("from", from.String()),
		logger.String("to", state.String()),
	)

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(from, state)
	}
}

// State returns the current state. An open breaker whose cool-down has
// elapsed still reports open until the next request probes it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// BreakerStats is a snapshot of the breaker's counters for the current window.
type BreakerStats struct {
	State                string `json:"state"`
	Requests             uint32 `json:"requests"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
}

// Stats returns a snapshot of the counters.
func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return BreakerStats{
		State:                cb.state.String(),
		Requests:             cb.counts.Requests,
		TotalFailures:        cb.counts.TotalFailures,
		ConsecutiveFailures:  cb.counts.ConsecutiveFailures,
		ConsecutiveSuccesses: cb.counts.ConsecutiveSuccesses,
	}
}

// Reset closes the breaker and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.counts = counts{}
	cb.expiry = time.Time{}
}
