// Package service holds the favorites workflow and the provider-backed
// movie queries. Every error leaving this package is a *errors.Error from
// pkg/errors; raw store and provider errors survive only as the wrapped cause.
package service

import (
	"context"
	"errors"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
	"github.com/Kr4uzr/movie-catalog/internal/repository"
	"github.com/Kr4uzr/movie-catalog/internal/upstream"
	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// MovieLookup resolves a provider id to its detail record.
type MovieLookup interface {
	LookupByID(ctx context.Context, externalID int64) (*domain.MovieDetail, error)
}

// FavoriteService manages the favorites collection.
type FavoriteService struct {
	repo     repository.FavoriteRepository
	provider MovieLookup
	logger   logger.Logger
}

// NewFavoriteService creates the favorites service.
func NewFavoriteService(repo repository.FavoriteRepository, provider MovieLookup, log logger.Logger) *FavoriteService {
	return &FavoriteService{
		repo:     repo,
		provider: provider,
		logger:   log.WithFields(logger.String("component", "favorite_service")),
	}
}

// AddFavorite resolves externalID against the provider and stores the
// normalized record. The existence pre-check only saves a provider call;
// the store's unique constraint decides races.
func (s *FavoriteService) AddFavorite(ctx context.Context, externalID int64) (*domain.Favorite, error) {
	if err := domain.ValidateExternalID(externalID); err != nil {
		return nil, apperrors.ErrValidation.WithError(err).
			WithMessage("O campo external_id deve ser um número inteiro positivo")
	}

	log := s.logger.WithContext(ctx).WithFields(logger.Int64("external_id", externalID))

	exists, err := s.repo.ExistsByExternalID(ctx, externalID)
	if err != nil {
		log.Error("Favorite pre-check failed", logger.Error(err))
		return nil, storageError(err)
	}
	if exists {
		return nil, conflictError(domain.ErrFavoriteAlreadyExists)
	}

	detail, err := s.provider.LookupByID(ctx, externalID)
	if err != nil {
		if errors.Is(err, upstream.ErrMovieNotFound) {
			return nil, apperrors.ErrNotFound.WithError(err).
				WithMessage("Filme não encontrado no provedor")
		}
		log.Warn("Provider lookup failed", logger.Error(err))
		return nil, upstreamError(err)
	}

	favorite, err := detail.ToFavorite()
	if err != nil {
		log.Warn("Provider returned an unusable movie record", logger.Error(err))
		return nil, upstreamError(err)
	}

	if err := s.repo.Insert(ctx, favorite); err != nil {
		if errors.Is(err, domain.ErrFavoriteAlreadyExists) {
			return nil, conflictError(err)
		}
		log.Error("Failed to store favorite", logger.Error(err))
		return nil, storageError(err)
	}

	log.Info("Favorite added", logger.Int64("id", favorite.ID))
	return favorite, nil
}

// ListFavorites returns every favorite, newest first. No favorites is not an error.
func (s *FavoriteService) ListFavorites(ctx context.Context) ([]*domain.Favorite, error) {
	favorites, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to list favorites", logger.Error(err))
		return nil, storageError(err)
	}
	if favorites == nil {
		favorites = []*domain.Favorite{}
	}
	return favorites, nil
}

// GetFavorite returns one favorite by its surrogate id.
func (s *FavoriteService) GetFavorite(ctx context.Context, id int64) (*domain.Favorite, error) {
	if id <= 0 {
		return nil, notFoundFavorite(domain.ErrInvalidFavoriteID)
	}

	favorite, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFavoriteNotFound) {
			return nil, notFoundFavorite(err)
		}
		s.logger.WithContext(ctx).Error("Failed to load favorite", logger.Int64("id", id), logger.Error(err))
		return nil, storageError(err)
	}
	return favorite, nil
}

// RemoveFavorite deletes the favorite with surrogate id.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, id int64) error {
	if _, err := s.GetFavorite(ctx, id); err != nil {
		return err
	}

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to delete favorite", logger.Int64("id", id), logger.Error(err))
		return storageError(err)
	}
	// deleted concurrently between lookup and delete
	if !removed {
		return notFoundFavorite(domain.ErrFavoriteNotFound)
	}

	s.logger.WithContext(ctx).Info("Favorite removed", logger.Int64("id", id))
	return nil
}

func conflictError(err error) *apperrors.Error {
	return apperrors.ErrConflict.WithError(err).WithMessage("Este filme já está nos favoritos")
}

func notFoundFavorite(err error) *apperrors.Error {
	return apperrors.ErrNotFound.WithError(err).WithMessage("Filme favorito não encontrado")
}

func storageError(err error) *apperrors.Error {
	return apperrors.ErrStorage.WithError(err).WithMessage("Erro ao acessar o banco de dados")
}

func upstreamError(err error) *apperrors.Error {
	return apperrors.ErrUpstream.WithError(err).WithMessage("Erro ao consultar o provedor de filmes")
}
