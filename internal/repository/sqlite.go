package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
)

// sqliteTimeLayout is fixed width so that text order equals time order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

// SQLiteRepository is the FavoriteRepository backed by an embedded SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteOption configures a SQLiteRepository.
type SQLiteOption func(*SQLiteRepository)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) SQLiteOption {
	return func(r *SQLiteRepository) { r.now = now }
}

// NewSQLiteRepository creates a SQLite favorites store on an open handle.
func NewSQLiteRepository(db *sql.DB, opts ...SQLiteOption) *SQLiteRepository {
	r := &SQLiteRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const sqliteSelectColumns = `id, external_id, title, overview, poster_path, release_date, rating, created_at`

// List returns all favorites, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteSelectColumns+`
		FROM favorite_movies
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*domain.Favorite, 0)
	for rows.Next() {
		f, err := scanSQLiteFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// Insert stores f. A duplicate external id yields domain.ErrFavoriteAlreadyExists.
func (r *SQLiteRepository) Insert(ctx context.Context, f *domain.Favorite) error {
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_movies (external_id, title, overview, poster_path, release_date, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ExternalID,
		f.Title,
		nullString(f.Overview),
		nullString(f.PosterPath),
		nullString(f.ReleaseDate),
		nullFloat(f.Rating),
		createdAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return domain.ErrFavoriteAlreadyExists
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	f.ID = id
	f.CreatedAt = createdAt
	return nil
}

// DeleteByID removes the favorite with id.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorite_movies WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	return n > 0, nil
}

// FindByID returns the favorite with id.
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*domain.Favorite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteSelectColumns+` FROM favorite_movies WHERE id = ?`, id)
	f, err := scanSQLiteFavorite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("find favorite: %w", err)
	}
	return f, nil
}

// ExistsByExternalID reports whether externalID is already a favorite.
func (r *SQLiteRepository) ExistsByExternalID(ctx context.Context, externalID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorite_movies WHERE external_id = ?)`,
		externalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// Ping checks the database handle.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFavorite(row rowScanner) (*domain.Favorite, error) {
	var (
		f           domain.Favorite
		overview    sql.NullString
		posterPath  sql.NullString
		releaseDate sql.NullString
		rating      sql.NullFloat64
		createdAt   string
	)
	err := row.Scan(
		&f.ID,
		&f.ExternalID,
		&f.Title,
		&overview,
		&posterPath,
		&releaseDate,
		&rating,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	f.CreatedAt, err = time.ParseInLocation(sqliteTimeLayout, createdAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	f.Overview = stringPtr(overview)
	f.PosterPath = stringPtr(posterPath)
	f.ReleaseDate = stringPtr(releaseDate)
	if rating.Valid {
		v := rating.Float64
		f.Rating = &v
	}
	return &f, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only when extended codes are off
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
