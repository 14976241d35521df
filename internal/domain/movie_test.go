package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMovieDetail_ToFavorite(t *testing.T) {
	payload := []byte(`{"id":424,"title":"Movie X","overview":"A film.","poster_path":"/x.jpg","release_date":"1993-12-15","vote_average":7.8,"genres":[{"id":18}]}`)

	detail, err := ParseMovieDetail(payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(detail.Raw))

	fav, err := detail.ToFavorite()
	require.NoError(t, err)
	assert.Equal(t, int64(424), fav.ExternalID)
	assert.Equal(t, "Movie X", fav.Title)
	require.NotNil(t, fav.Overview)
	assert.Equal(t, "A film.", *fav.Overview)
	require.NotNil(t, fav.ReleaseDate)
	assert.Equal(t, "1993-12-15", *fav.ReleaseDate)
	require.NotNil(t, fav.Rating)
	assert.Equal(t, 7.8, *fav.Rating)
	assert.Zero(t, fav.ID)
}

func TestToFavorite_OptionalFields(t *testing.T) {
	detail, err := ParseMovieDetail([]byte(`{"id":7,"title":"Sparse","overview":"","poster_path":null,"release_date":"","vote_average":null}`))
	require.NoError(t, err)

	fav, err := detail.ToFavorite()
	require.NoError(t, err)
	assert.Nil(t, fav.Overview)
	assert.Nil(t, fav.PosterPath)
	assert.Nil(t, fav.ReleaseDate)
	assert.Nil(t, fav.Rating, "null vote_average must not become 0")
}

func TestToFavorite_MissingVoteAverage(t *testing.T) {
	detail, err := ParseMovieDetail([]byte(`{"id":7,"title":"No votes"}`))
	require.NoError(t, err)

	fav, err := detail.ToFavorite()
	require.NoError(t, err)
	assert.Nil(t, fav.Rating)
}

func TestToFavorite_Incomplete(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no title", `{"id":1}`},
		{"blank title", `{"id":1,"title":"  "}`},
		{"no id", `{"title":"Orphan"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := ParseMovieDetail([]byte(tt.payload))
			require.NoError(t, err)
			_, err = detail.ToFavorite()
			assert.ErrorIs(t, err, ErrIncompleteMovie)
		})
	}
}

func TestParseMovieDetail_Malformed(t *testing.T) {
	_, err := ParseMovieDetail([]byte(`<html>`))
	assert.Error(t, err)

	_, err = ParseMovieDetail([]byte(`{"id":"not-a-number"}`))
	assert.Error(t, err)
}

func TestNormalizeRating(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   *float64
		want *float64
	}{
		{"nil", nil, nil},
		{"already one decimal", f(7.8), f(7.8)},
		{"rounds half up", f(7.25), f(7.3)},
		{"rounds down", f(8.349), f(8.3)},
		{"zero kept", f(0), f(0)},
		{"ten kept", f(10), f(10)},
		{"negative dropped", f(-1), nil},
		{"above ten dropped", f(10.5), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRating(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestValidateExternalID(t *testing.T) {
	assert.NoError(t, ValidateExternalID(1))
	assert.ErrorIs(t, ValidateExternalID(0), ErrInvalidExternalID)
	assert.ErrorIs(t, ValidateExternalID(-5), ErrInvalidExternalID)
}

func TestNormalizeDate(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Nil(t, normalizeDate(nil))
	assert.Nil(t, normalizeDate(s("")))
	assert.Nil(t, normalizeDate(s("2020-13-01")))
	assert.Nil(t, normalizeDate(s("15/12/1993")))
	require.NotNil(t, normalizeDate(s("2020-02-29")))
	assert.Equal(t, "2020-02-29", *normalizeDate(s("2020-02-29")))
}
