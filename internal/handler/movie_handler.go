package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// MovieHandler relays provider queries. Provider payloads are returned as
// the envelope's data without reshaping.
type MovieHandler struct {
	service MovieService
	log     logger.Logger
}

func NewMovieHandler(service MovieService, log logger.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		log:     log,
	}
}

// Search
// GET /movies/search?query=xxx
func (h *MovieHandler) Search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, result, msgSearchResults)
}

// TopRated
// GET /movies/top-rated?page=1
func (h *MovieHandler) TopRated(c *gin.Context) {
	page := getIntParam(c, "page", 1)

	result, err := h.service.TopRated(c.Request.Context(), page)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, result, msgTopRated)
}

// Detail returns the provider's movie record.
// GET /movies/:external_id
func (h *MovieHandler) Detail(c *gin.Context) {
	id, ok := parseIDParam(c, "external_id")
	if !ok {
		httputil.ErrorResponse(c, apperrors.ErrBadRequest.WithMessage("ID de filme inválido"))
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	httputil.Success(c, detail.Raw, msgMovieDetail)
}
