package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresRepository is the FavoriteRepository backed by PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL favorites store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgSelectColumns = `id, external_id, title, overview, poster_path,
	to_char(release_date, 'YYYY-MM-DD'), rating::float8, created_at`

// List returns all favorites, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Favorite, error) {
	query := `SELECT ` + pgSelectColumns + `
		FROM favorite_movies
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*domain.Favorite, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// Insert stores f. A duplicate external id yields domain.ErrFavoriteAlreadyExists.
func (r *PostgresRepository) Insert(ctx context.Context, f *domain.Favorite) error {
	query := `
		INSERT INTO favorite_movies (external_id, title, overview, poster_path, release_date, rating)
		VALUES ($1, $2, $3, $4, CAST($5::text AS DATE), $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		f.ExternalID,
		f.Title,
		f.Overview,
		f.PosterPath,
		f.ReleaseDate,
		f.Rating,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrFavoriteAlreadyExists
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// DeleteByID removes the favorite with id.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM favorite_movies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindByID returns the favorite with id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*domain.Favorite, error) {
	query := `SELECT ` + pgSelectColumns + ` FROM favorite_movies WHERE id = $1`

	f, err := scanFavorite(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("find favorite: %w", err)
	}
	return f, nil
}

// ExistsByExternalID reports whether externalID is already a favorite.
func (r *PostgresRepository) ExistsByExternalID(ctx context.Context, externalID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorite_movies WHERE external_id = $1)`,
		externalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// Ping checks the pool.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanFavorite(row pgx.Row) (*domain.Favorite, error) {
	var f domain.Favorite
	err := row.Scan(
		&f.ID,
		&f.ExternalID,
		&f.Title,
		&f.Overview,
		&f.PosterPath,
		&f.ReleaseDate,
		&f.Rating,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
