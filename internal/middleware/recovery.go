package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Kr4uzr/movie-catalog/pkg/errors"
	"github.com/Kr4uzr/movie-catalog/pkg/httputil"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// Recovery turns a panic into a 500 envelope.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(
					logger.String("request_id", httputil.GetRequestID(c)),
					logger.String("panic", fmt.Sprintf("%v", r)),
					logger.String("stack", string(debug.Stack())),
				).Error("Panic recovered")

				httputil.AbortWithError(c, apperrors.ErrInternal.WithMessage("Erro interno do servidor"))
			}
		}()

		c.Next()
	}
}
