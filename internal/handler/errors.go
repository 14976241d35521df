package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// handleError renders err as a failure envelope. Server-side failures are
// logged with their cause; the client only sees the code and message.
func handleError(c *gin.Context, log logger.Logger, err error) {
	if apperrors.GetHTTPStatus(err) >= 500 {
		log.WithContext(c.Request.Context()).Error("Request failed",
			logger.String("request_id", httputil.GetRequestID(c)),
			logger.String("path", c.FullPath()),
			logger.String("code", apperrors.GetCode(err)),
			logger.Error(err),
		)
	}
	httputil.ErrorResponse(c, err)
}
