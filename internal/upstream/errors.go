package upstream

import "errors"

var (
	// ErrMovieNotFound is the provider's answer for an unknown id. It is a
	// valid response, not a failure, and does not trip the breaker.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrUpstreamUnavailable covers connection failures and 5xx answers.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrUnexpectedStatus covers 4xx answers other than 404 (bad key, bad request).
	ErrUnexpectedStatus = errors.New("unexpected status from upstream")

	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrInvalidResponse = errors.New("invalid response from upstream")
	ErrTimeout         = errors.New("request timeout")
)
