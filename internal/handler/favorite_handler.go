package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// FavoriteHandler serves /favorites.
type FavoriteHandler struct {
	service FavoriteService
	log     logger.Logger
}

// NewFavoriteHandler creates the favorites handler.
func NewFavoriteHandler(service FavoriteService, log logger.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: service,
		log:     log,
	}
}

// AddFavoriteRequest is the POST /favorites body.
type AddFavoriteRequest struct {
	ExternalID *int64 `json:"external_id"`
}

// AddFavorite stores a movie as favorite.
// POST /favorites {"external_id": 424}
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ExternalID == nil {
		httputil.ErrorResponse(c, apperrors.ErrValidation.WithError(err).
			WithMessage("O campo external_id é obrigatório e deve ser um número inteiro"))
		return
	}

	favorite, err := h.service.AddFavorite(c.Request.Context(), *req.ExternalID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Created(c, favorite, msgFavoriteAdded)
}

// ListFavorites returns every favorite, newest first.
// GET /favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.service.ListFavorites(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, favorites, msgFavoritesListed)
}

// GetFavorite returns one favorite.
// GET /favorites/:id
func (h *FavoriteHandler) GetFavorite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		httputil.ErrorResponse(c, apperrors.ErrValidation.WithMessage("ID de favorito inválido"))
		return
	}

	favorite, err := h.service.GetFavorite(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, favorite, msgFavoriteFound)
}

// RemoveFavorite deletes a favorite by its id.
// DELETE /favorites/:id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		httputil.ErrorResponse(c, apperrors.ErrValidation.WithMessage("ID de favorito inválido"))
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, nil, msgFavoriteRemoved)
}
