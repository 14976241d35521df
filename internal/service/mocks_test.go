package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
)

// MockFavoriteRepository mocks repository.FavoriteRepository.
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) List(ctx context.Context) ([]*domain.Favorite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) Insert(ctx context.Context, f *domain.Favorite) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFavoriteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) FindByID(ctx context.Context, id int64) (*domain.Favorite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) ExistsByExternalID(ctx context.Context, externalID int64) (bool, error) {
	args := m.Called(ctx, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMovieCatalog mocks the provider client.
type MockMovieCatalog struct {
	mock.Mock
}

func (m *MockMovieCatalog) LookupByID(ctx context.Context, externalID int64) (*domain.MovieDetail, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieDetail), args.Error(1)
}

func (m *MockMovieCatalog) SearchByName(ctx context.Context, query string) (json.RawMessage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockMovieCatalog) ListTopRated(ctx context.Context, page int) (json.RawMessage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
