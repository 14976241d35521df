package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
	"github.com/Kr4uzr/movie-catalog/internal/upstream"
	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// MovieCatalog is the read side of the provider.
type MovieCatalog interface {
	MovieLookup
	SearchByName(ctx context.Context, query string) (json.RawMessage, error)
	ListTopRated(ctx context.Context, page int) (json.RawMessage, error)
}

// MovieService relays provider queries. Payloads pass through untouched.
type MovieService struct {
	catalog MovieCatalog
	logger  logger.Logger
}

func NewMovieService(catalog MovieCatalog, log logger.Logger) *MovieService {
	return &MovieService{
		catalog: catalog,
		logger:  log.WithFields(logger.String("component", "movie_service")),
	}
}

// Search looks movies up by title.
func (s *MovieService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.ErrBadRequest.WithError(upstream.ErrEmptyQuery).
			WithMessage("O parâmetro query é obrigatório")
	}

	payload, err := s.catalog.SearchByName(ctx, query)
	if err != nil {
		return nil, s.translate(ctx, "search", err)
	}
	return payload, nil
}

// TopRated returns one page of the top-rated listing; page < 1 means the first page.
func (s *MovieService) TopRated(ctx context.Context, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}

	payload, err := s.catalog.ListTopRated(ctx, page)
	if err != nil {
		return nil, s.translate(ctx, "top_rated", err)
	}
	return payload, nil
}

// Detail returns the provider's record for externalID.
func (s *MovieService) Detail(ctx context.Context, externalID int64) (*domain.MovieDetail, error) {
	if err := domain.ValidateExternalID(externalID); err != nil {
		return nil, apperrors.ErrBadRequest.WithError(err).WithMessage("ID de filme inválido")
	}

	detail, err := s.catalog.LookupByID(ctx, externalID)
	if err != nil {
		return nil, s.translate(ctx, "detail", err)
	}
	return detail, nil
}

func (s *MovieService) translate(ctx context.Context, op string, err error) error {
	if errors.Is(err, upstream.ErrMovieNotFound) {
		return apperrors.ErrNotFound.WithError(err).WithMessage("Filme não encontrado no provedor")
	}
	s.logger.WithContext(ctx).Warn("Provider query failed",
		logger.String("operation", op),
		logger.Error(err),
	)
	return upstreamError(err)
}
