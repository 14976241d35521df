package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*ClientConfig)) (*TMDBClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ClientConfig{
		BaseURL:         srv.URL,
		Language:        "pt-BR",
		APIKey:          "secret",
		Timeout:         2 * time.Second,
		BreakerSettings: BreakerSettings{MaxFailures: 3, Timeout: time.Minute},
	}
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewTMDBClient(cfg, &mockLogger{})
	require.NoError(t, err)
	return client, srv
}

func TestLookupByID_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/424", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":424,"title":"Movie X","vote_average":7.8}`))
	})

	detail, err := client.LookupByID(context.Background(), 424)
	require.NoError(t, err)
	assert.Equal(t, int64(424), detail.ID)
	require.NotNil(t, detail.Title)
	assert.Equal(t, "Movie X", *detail.Title)
	require.NotNil(t, detail.VoteAverage)
	assert.Equal(t, 7.8, *detail.VoteAverage)
	assert.JSONEq(t, `{"id":424,"title":"Movie X","vote_average":7.8}`, string(detail.Raw))
}

func TestLookupByID_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	_, err := client.LookupByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	// not-found answers never open the breaker
	for i := 0; i < 5; i++ {
		_, _ = client.LookupByID(context.Background(), 1)
	}
	assert.Equal(t, StateClosed, client.BreakerState())
}

func TestLookupByID_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.LookupByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestLookupByID_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	})

	_, err := client.LookupByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestLookupByID_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong types", `{"id":"abc","title":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := client.LookupByID(context.Background(), 1)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestLookupByID_Timeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *ClientConfig) {
		cfg.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	start := time.Now()
	_, err := client.LookupByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLookupByID_ConnectionRefusedHidesAPIKey(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.LookupByID(context.Background(), 1)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.NotContains(t, err.Error(), "secret")
}

func TestClient_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 3; i++ {
		_, err := client.LookupByID(context.Background(), int64(i+1))
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	}

	_, err := client.LookupByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), hits.Load(), "open breaker must not reach the provider")
}

func TestClient_CoalescesConcurrentIdenticalRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"id":7,"title":"Shared"}`))
	})

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.LookupByID(context.Background(), 7)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	// give the remaining callers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())

	// nothing is retained once the call completes
	_, err := client.LookupByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_CallerCancellationDoesNotAbortSharedCall(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"id":8,"title":"Late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := client.LookupByID(ctx, 8)
		first <- err
	}()
	second := make(chan error, 1)
	go func() {
		_, err := client.LookupByID(context.Background(), 8)
		second <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.True(t, errors.Is(<-first, context.Canceled))

	close(release)
	assert.NoError(t, <-second)
}

func TestSearchByName(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "o poderoso chefão", r.URL.Query().Get("query"))
		w.Write([]byte(`{"page":1,"results":[{"id":238}],"total_results":1}`))
	})

	raw, err := client.SearchByName(context.Background(), "  o poderoso chefão ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"results":[{"id":238}],"total_results":1}`, string(raw))

	_, err = client.SearchByName(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestListTopRated_Page(t *testing.T) {
	var pages []string
	var mu sync.Mutex
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/top_rated", r.URL.Path)
		mu.Lock()
		pages = append(pages, r.URL.Query().Get("page"))
		mu.Unlock()
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	_, err := client.ListTopRated(context.Background(), 0)
	require.NoError(t, err)
	_, err = client.ListTopRated(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, pages)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "not a url"}, &mockLogger{})
	assert.Error(t, err)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/movie/{id}", endpointLabel("/movie/424"))
	assert.Equal(t, "/movie/top_rated", endpointLabel("/movie/top_rated"))
	assert.Equal(t, "/search/movie", endpointLabel("/search/movie"))
}
