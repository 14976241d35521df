// Package handler exposes the favorites and movie queries over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kr4uzr/movie-catalog/internal/domain"
)

const (
	msgFavoritesListed = "Lista de filmes favoritos retornada com sucesso!"
	msgFavoriteFound   = "Filme favorito retornado com sucesso!"
	msgFavoriteAdded   = "Filme adicionado aos favoritos com sucesso!"
	msgFavoriteRemoved = "Filme removido dos favoritos com sucesso!"
	msgSearchResults   = "Resultados da busca retornados com sucesso!"
	msgTopRated        = "Lista de filmes mais bem avaliados retornada com sucesso!"
	msgMovieDetail     = "Detalhes do filme retornados com sucesso!"
)

// FavoriteService is the favorites workflow the handlers drive.
type FavoriteService interface {
	AddFavorite(ctx context.Context, externalID int64) (*domain.Favorite, error)
	ListFavorites(ctx context.Context) ([]*domain.Favorite, error)
	GetFavorite(ctx context.Context, id int64) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, id int64) error
}

// MovieService relays provider queries.
type MovieService interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
	TopRated(ctx context.Context, page int) (json.RawMessage, error)
	Detail(ctx context.Context, externalID int64) (*domain.MovieDetail, error)
}

// getIntParam reads an integer query parameter, falling back to defaultValue
// when it is missing or malformed.
func getIntParam(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseIDParam(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
