package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// ErrEmptyQuery is returned by SearchByName for a blank query.
var ErrEmptyQuery = errors.New("search query is empty")

// TMDBClient exposes the three provider operations the catalog uses.
type TMDBClient struct {
	*Client
}

// NewTMDBClient creates a client for The Movie Database v3 API.
func NewTMDBClient(config ClientConfig, log logger.Logger) (*TMDBClient, error) {
	client, err := NewClient(config, log)
	if err != nil {
		return nil, err
	}
	return &TMDBClient{Client: client}, nil
}

// LookupByID fetches the movie detail for externalID. A provider 404
// yields ErrMovieNotFound; transport problems, timeouts and undecodable
// payloads yield the other upstream errors.
func (c *TMDBClient) LookupByID(ctx context.Context, externalID int64) (*domain.MovieDetail, error) {
	data, err := c.Get(ctx, "/movie/"+strconv.FormatInt(externalID, 10), nil)
	if err != nil {
		return nil, err
	}

	detail, err := domain.ParseMovieDetail(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return detail, nil
}

// SearchByName searches movies by title and returns the provider payload as is.
func (c *TMDBClient) SearchByName(ctx context.Context, query string) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return c.Get(ctx, "/search/movie", url.Values{"query": []string{query}})
}

// ListTopRated returns one page of the top-rated listing as is. Pages
// below 1 are treated as 1.
func (c *TMDBClient) ListTopRated(ctx context.Context, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}
	return c.Get(ctx, "/movie/top_rated", url.Values{"page": []string{strconv.Itoa(page)}})
}
