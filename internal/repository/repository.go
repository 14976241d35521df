package repository

import (
	"context"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
)

// FavoriteRepository stores favorite movies. Implementations enforce the
// uniqueness of ExternalID themselves and report a violation as
// domain.ErrFavoriteAlreadyExists.
type FavoriteRepository interface {
	// List returns every favorite, newest first. An empty store yields an empty slice.
	List(ctx context.Context) ([]*domain.Favorite, error)
	// Insert stores f and fills in its ID and CreatedAt.
	Insert(ctx context.Context, f *domain.Favorite) error
	// DeleteByID reports whether a record was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
	// FindByID returns domain.ErrFavoriteNotFound when id is absent.
	FindByID(ctx context.Context, id int64) (*domain.Favorite, error)
	ExistsByExternalID(ctx context.Context, externalID int64) (bool, error)
	Ping(ctx context.Context) error
}
