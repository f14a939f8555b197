package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes. Validation and conflict failures share BAD_REQUEST.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// ErrorBody is the envelope for every failed request. Status mirrors the HTTP status.
type ErrorBody struct {
	Code      string      `json:"code"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}

// Resource writes a single named resource, e.g. {"user": {...}}.
func Resource[T any](ctx *gin.Context, status int, name string, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, map[string]T{name: data})
}

// Error writes the error envelope and returns it.
func Error(ctx *gin.Context, status int, code, message string, details interface{}) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if code == "" {
		code = CodeFor(status)
	}
	body := ErrorBody{
		Code:      code,
		Status:    status,
		Message:   message,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now(),
		Details:   details,
	}
	ctx.JSON(status, body)
	return body
}

// Abort writes the error envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, code, message string, details interface{}) {
	Error(ctx, status, code, message, details)
	ctx.Abort()
}

// CodeFor returns the default code for an HTTP status.
func CodeFor(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	default:
		return CodeInternal
	}
}
