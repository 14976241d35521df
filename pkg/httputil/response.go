// Package httputil provides the JSON response envelope and request-id helpers.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kr4uzr/movie-catalog/pkg/errors"
)

const (
	// RequestIDHeader carries the request id in and out of the service.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"
)

// Response is the envelope every endpoint responds with.
//
//	success: {"success":true,"data":...,"message":"..."}
//	failure: {"success":false,"data":null,"error":"...","code":"..."}
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Success sends a 200 envelope.
func Success(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusOK, data, message)
}

// Created sends a 201 envelope.
func Created(c *gin.Context, data interface{}, message string) {
	JSON(c, http.StatusCreated, data, message)
}

// JSON sends a success envelope with an explicit status.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponse renders err. Application errors keep their status, code and
// message; anything else becomes a 500 without leaking the cause.
func ErrorResponse(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal
	}
	Fail(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
}

// Fail sends a failure envelope.
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Data:    nil,
		Error:   message,
		Code:    code,
	})
}

// AbortWithError renders err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	ErrorResponse(c, err)
	c.Abort()
}

// GetRequestID returns the request id set by the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if requestID, ok := id.(string); ok {
			return requestID
		}
	}
	return ""
}
