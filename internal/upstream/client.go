// Package upstream is the client for the external movie metadata provider.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

const instrumentationName = "github.com/Kr4uzr/movie-catalog/internal/upstream"

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// ClientConfig configures the provider client.
type ClientConfig struct {
	BaseURL         string
	Language        string // sent as the "language" query parameter
	APIKey          string // sent as the "api_key" query parameter
	Timeout         time.Duration
	BreakerSettings BreakerSettings
	HTTPClient      *http.Client // optional
}

// Client performs GET requests against the provider with a per-call
// timeout and a circuit breaker. It never retries. Identical requests in
// flight at the same moment share one round trip; nothing is kept after it
// completes.
type Client struct {
	baseURL    string
	language   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *CircuitBreaker
	group      singleflight.Group
	tracer     trace.Tracer
	calls      metric.Int64Counter
	logger     logger.Logger
}

// NewClient creates a provider client.
func NewClient(config ClientConfig, log logger.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", config.BaseURL, err)
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	settings := config.BreakerSettings
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = isBreakerSuccess
	}

	calls, err := otel.Meter(instrumentationName).Int64Counter(
		"provider_requests_total",
		metric.WithDescription("Requests sent to the movie provider"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create provider counter: %w", err)
	}

	log = log.WithFields(logger.String("component", "upstream"))
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		language:   config.Language,
		apiKey:     config.APIKey,
		timeout:    config.Timeout,
		httpClient: httpClient,
		breaker:    NewCircuitBreaker(settings, log),
		tracer:     otel.Tracer(instrumentationName),
		calls:      calls,
		logger:     log,
	}, nil
}

// isBreakerSuccess treats a definite "not found" and a caller that went
// away as healthy answers; everything else counts as a provider failure.
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrMovieNotFound) || errors.Is(err, context.Canceled)
}

// Get fetches endpoint with params and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	if c.language != "" {
		q.Set("language", c.language)
	}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	target := c.baseURL + endpoint + "?" + q.Encode()

	// The shared call must outlive any single caller's cancellation; it is
	// still bounded by c.timeout.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(target, func() (interface{}, error) {
		return c.do(shared, endpoint, target)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, endpoint, target string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "provider GET "+endpointLabel(endpoint),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", http.MethodGet)),
	)
	defer span.End()

	start := time.Now()
	var body []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		body, reqErr = c.doRequest(ctx, target)
		return reqErr
	})

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrMovieNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrCircuitOpen):
		outcome = "circuit_open"
	case errors.Is(err, ErrTimeout):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	c.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpointLabel(endpoint)),
		attribute.String("outcome", outcome),
	))

	fields := []logger.Field{
		logger.String("endpoint", endpoint),
		logger.String("outcome", outcome),
		logger.Duration("latency", time.Since(start)),
	}
	if err != nil && outcome != "not_found" {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.WithContext(ctx).Warn("Provider request failed", append(fields, logger.Error(err))...)
		return nil, err
	}
	c.logger.WithContext(ctx).Debug("Provider request", fields...)
	return body, err
}

func (c *Client) doRequest(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "movie-catalog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrMovieNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status code %d", ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status code %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)
	}
	return body, nil
}

// BreakerState reports the breaker state for health checks.
func (c *Client) BreakerState() State {
	return c.breaker.State()
}

// BreakerStats reports the breaker counters for health checks.
func (c *Client) BreakerStats() BreakerStats {
	return c.breaker.Stats()
}

// endpointLabel collapses ids so metrics and span names stay low-cardinality.
func endpointLabel(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// redact strips the query string (and with it the API key) from url errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			u.RawQuery = ""
			return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
		}
	}
	return err
}
