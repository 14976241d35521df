package domain

import "errors"

var (
	ErrInvalidExternalID = errors.New("invalid external id")
	ErrInvalidFavoriteID = errors.New("invalid favorite id")

	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrFavoriteAlreadyExists = errors.New("favorite already exists")

	// ErrIncompleteMovie is returned when a provider record lacks the fields
	// a favorite cannot be stored without.
	ErrIncompleteMovie = errors.New("movie record is missing id or title")
)
