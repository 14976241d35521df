package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// ReleaseDateLayout is the only date form accepted from the provider.
const ReleaseDateLayout = "2006-01-02"

// MovieDetail is the provider's movie record. Everything except the id may
// be missing or null, so optional fields are pointers. Raw keeps the exact
// payload for passthrough responses.
type MovieDetail struct {
	ID          int64           `json:"id"`
	Title       *string         `json:"title"`
	Overview    *string         `json:"overview"`
	PosterPath  *string         `json:"poster_path"`
	ReleaseDate *string         `json:"release_date"`
	VoteAverage *float64        `json:"vote_average"`
	Raw         json.RawMessage `json:"-"`
}

// ParseMovieDetail decodes a provider payload and retains it in Raw.
func ParseMovieDetail(payload []byte) (*MovieDetail, error) {
	var m MovieDetail
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	m.Raw = append(json.RawMessage(nil), payload...)
	return &m, nil
}

// ToFavorite maps a provider record onto a new, unsaved Favorite:
//
//   - title is required; a missing or blank title yields ErrIncompleteMovie
//   - blank overview and poster_path become absent
//   - release_date survives only in YYYY-MM-DD form
//   - vote_average is rounded to one decimal; null or out of range becomes absent
func (m *MovieDetail) ToFavorite() (*Favorite, error) {
	if m.ID <= 0 || m.Title == nil || strings.TrimSpace(*m.Title) == "" {
		return nil, ErrIncompleteMovie
	}

	return &Favorite{
		ExternalID:  m.ID,
		Title:       strings.TrimSpace(*m.Title),
		Overview:    nonBlank(m.Overview),
		PosterPath:  nonBlank(m.PosterPath),
		ReleaseDate: normalizeDate(m.ReleaseDate),
		Rating:      NormalizeRating(m.VoteAverage),
	}, nil
}

// NormalizeRating rounds r to one decimal and drops values outside 0-10.
func NormalizeRating(r *float64) *float64 {
	if r == nil || math.IsNaN(*r) || *r < 0 || *r > 10 {
		return nil
	}
	v := math.Round(*r*10) / 10
	return &v
}

func normalizeDate(s *string) *string {
	if s == nil {
		return nil
	}
	d := strings.TrimSpace(*s)
	if _, err := time.Parse(ReleaseDateLayout, d); err != nil {
		return nil
	}
	return &d
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
