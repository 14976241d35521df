package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

func newTestRepo(t *testing.T, opts ...SQLiteOption) *SQLiteRepository {
	t.Helper()
	cfg := config.StorageConfig{
		Driver:      config.DriverSQLite,
		AutoMigrate: true,
		SQLite:      config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")},
	}

	repo, closeFn, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(closeFn)

	sqliteRepo := repo.(*SQLiteRepository)
	for _, opt := range opts {
		opt(sqliteRepo)
	}
	return sqliteRepo
}

func strPtr(s string) *string   { return &s }
func fltPtr(f float64) *float64 { return &f }

func newFav(id int64) *domain.Favorite {
	return &domain.Favorite{ExternalID: id, Title: "Movie"}
}

func TestSQLiteRepository_InsertAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fav := &domain.Favorite{
		ExternalID:  424,
		Title:       "Movie X",
		Overview:    strPtr("Overview"),
		ReleaseDate: strPtr("1993-12-15"),
		Rating:      fltPtr(7.8),
	}
	require.NoError(t, repo.Insert(ctx, fav))
	assert.Positive(t, fav.ID)
	assert.False(t, fav.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(424), got.ExternalID)
	assert.Equal(t, "Movie X", got.Title)
	assert.Equal(t, "Overview", *got.Overview)
	assert.Nil(t, got.PosterPath)
	assert.Equal(t, "1993-12-15", *got.ReleaseDate)
	assert.Equal(t, 7.8, *got.Rating)
	assert.True(t, fav.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteRepository_NullRating(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fav := newFav(1)
	require.NoError(t, repo.Insert(ctx, fav))

	got, err := repo.FindByID(ctx, fav.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
}

func TestSQLiteRepository_DuplicateExternalID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newFav(424)))
	err := repo.Insert(ctx, newFav(424))
	assert.ErrorIs(t, err, domain.ErrFavoriteAlreadyExists)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, newFav(99))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrFavoriteAlreadyExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestSQLiteRepository_ListEmpty(t *testing.T) {
	repo := newTestRepo(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLiteRepository_ListNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo := newTestRepo(t, WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, repo.Insert(ctx, newFav(id)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ExternalID, list[1].ExternalID, list[2].ExternalID})
}

func TestSQLiteRepository_ListSameInstantFallsBackToID(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	for _, id := range []int64{10, 20} {
		require.NoError(t, repo.Insert(ctx, newFav(id)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(20), list[0].ExternalID)
}

func TestSQLiteRepository_DeleteByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fav := newFav(5)
	require.NoError(t, repo.Insert(ctx, fav))

	deleted, err := repo.DeleteByID(ctx, fav.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(ctx, fav.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.FindByID(ctx, fav.ID)
	assert.ErrorIs(t, err, domain.ErrFavoriteNotFound)
}

func TestSQLiteRepository_IDsAreNotReused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := newFav(1)
	require.NoError(t, repo.Insert(ctx, first))
	_, err := repo.DeleteByID(ctx, first.ID)
	require.NoError(t, err)

	second := newFav(1)
	require.NoError(t, repo.Insert(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestSQLiteRepository_ExistsByExternalID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.ExistsByExternalID(ctx, 424)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Insert(ctx, newFav(424)))

	exists, err = repo.ExistsByExternalID(ctx, 424)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteRepository_Ping(t *testing.T) {
	assert.NoError(t, newTestRepo(t).Ping(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.StorageConfig{Driver: "mysql"}, logger.Nop())
	assert.Error(t, err)
}
