package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/pkg/response"
	"github.com/oksasatya/go-ddd-user-service/pkg/validation"
)

const internalMessage = "Internal server error"

// ErrorHandler answers the last error attached with c.Error using the error envelope.
// Handlers only attach errors and return.
func ErrorHandler(logger *logrus.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := Translate(err, production)

		entry := logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(CtxRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"code":       body.Code,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		c.AbortWithStatusJSON(status, response.ErrorResponse{Error: body})
	}
}

// Translate maps an error to its HTTP status and envelope body.
func Translate(err error, production bool) (int, response.ErrorBody) {
	var (
		bindErr    *validation.Error
		entityErr  *entity.ValidationError
		notFound   *application.UserNotFoundError
		exists     *application.UserAlreadyExistsError
		transition *entity.InvalidStateTransitionError
		tooLarge   *http.MaxBytesError
	)

	switch {
	// checked before bindErr: the binder surfaces the body reader's error
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, response.ErrorBody{
			Code:    response.CodePayloadTooLarge,
			Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
		}
	case errors.As(err, &bindErr):
		return http.StatusBadRequest, response.ErrorBody{
			Code:    response.CodeValidation,
			Message: "Validation failed",
			Details: toDetails(validation.ToDetails(bindErr.Err)),
		}
	case errors.As(err, &entityErr):
		details := make([]response.ErrorDetail, 0, len(entityErr.Violations))
		for _, v := range entityErr.Violations {
			details = append(details, response.ErrorDetail{Field: v.Field, Message: v.Message})
		}
		return http.StatusBadRequest, response.ErrorBody{
			Code:    response.CodeValidation,
			Message: entityErr.Message,
			Details: details,
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, response.ErrorBody{Code: response.CodeUserNotFound, Message: notFound.Error()}
	case errors.As(err, &exists):
		return http.StatusConflict, response.ErrorBody{Code: response.CodeUserAlreadyExists, Message: exists.Error()}
	case errors.As(err, &transition):
		return http.StatusConflict, response.ErrorBody{Code: response.CodeInvalidStateTransition, Message: transition.Error()}
	}

	msg := internalMessage
	if !production && err != nil {
		msg = err.Error()
	}
	return http.StatusInternalServerError, response.ErrorBody{Code: response.CodeInternal, Message: msg}
}

func toDetails(fes []validation.FieldError) []response.ErrorDetail {
	out := make([]response.ErrorDetail, 0, len(fes))
	for _, fe := range fes {
		out = append(out, response.ErrorDetail{Field: fe.Field, Message: fe.Message})
	}
	return out
}

// Recovery turns a panic into a 500 INTERNAL_ERROR envelope.
func Recovery(logger *logrus.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		err := fmt.Errorf("panic: %v", rec)
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(CtxRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Error("panic recovered")

		msg := internalMessage
		if !production {
			msg = err.Error()
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, msg, nil)
	})
}

// NotFound is the catch-all for unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound,
			fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path), nil)
	}
}
