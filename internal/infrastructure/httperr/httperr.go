// Package httperr renders the service's JSON error envelope.
package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Error types carried in the envelope.
const (
	TypeInvalidRequest = "invalid_request_error"
	TypeUnauthorized   = "authentication_error"
	TypeForbidden      = "permission_error"
	TypeNotFound       = "not_found_error"
	TypeUnavailable    = "service_unavailable_error"
	TypeInternal       = "internal_error"
)

// Body is the JSON error envelope.
type Body struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// Abort writes the envelope with status and stops the handler chain.
func Abort(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, Body{Error: Detail{
		Message:   message,
		Type:      errType,
		RequestID: c.GetString(RequestIDKey),
	}})
}

func BadRequest(c *gin.Context, message string) {
	Abort(c, http.StatusBadRequest, TypeInvalidRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Abort(c, http.StatusUnauthorized, TypeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Abort(c, http.StatusForbidden, TypeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Abort(c, http.StatusNotFound, TypeNotFound, message)
}

// Unavailable hides the cause; callers log it.
func Unavailable(c *gin.Context) {
	Abort(c, http.StatusServiceUnavailable, TypeUnavailable, "service temporarily unavailable, please retry")
}
