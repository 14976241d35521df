package domain

import "time"

// Favorite is a movie the user saved locally. Records are immutable once
// stored; the only mutation is deletion.
type Favorite struct {
	ID          int64     `json:"id"`           // surrogate, assigned by the store
	ExternalID  int64     `json:"external_id"`  // provider id, unique
	Title       string    `json:"title"`        // never empty
	Overview    *string   `json:"overview"`     // nullable
	PosterPath  *string   `json:"poster_path"`  // nullable
	ReleaseDate *string   `json:"release_date"` // YYYY-MM-DD, nullable
	Rating      *float64  `json:"rating"`       // one decimal, 0.0-10.0, nullable
	CreatedAt   time.Time `json:"created_at"`
}

// ValidateExternalID rejects non-positive provider ids.
func ValidateExternalID(id int64) error {
	if id <= 0 {
		return ErrInvalidExternalID
	}
	return nil
}
