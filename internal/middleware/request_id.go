// Package middleware contains the gin middleware chain of the catalog service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// RequestID reuses the caller's X-Request-ID or generates one, echoes it in
// the response and stores it in both the gin and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(httputil.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Writer.Header().Set(httputil.RequestIDHeader, requestID)
		c.Set(httputil.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
