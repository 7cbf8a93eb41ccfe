package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes used in the error envelope.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeUserAlreadyExists      = "USER_ALREADY_EXISTS"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeNotFound               = "NOT_FOUND"
	CodeRateLimited            = "RATE_LIMITED"
	CodePayloadTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeInternal               = "INTERNAL_ERROR"
)

type DataResponse[T any] struct {
	Data T `json:"data"`
}

type PageResponse[T any, M any] struct {
	Data T `json:"data"`
	Meta M `json:"meta"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Success writes {data} with the given status (200 when zero).
func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, DataResponse[T]{Data: data})
}

// Page writes {data, meta}.
func Page[T any, M any](c *gin.Context, data T, meta M) {
	c.JSON(http.StatusOK, PageResponse[T, M]{Data: data, Meta: meta})
}

// Error aborts the chain and writes the error envelope.
func Error(c *gin.Context, status int, code, message string, details []ErrorDetail) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
