package response

import (
	"errors"
	"net/http"

	"github.com/arixen/socialite/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Envelope is the uniform response body: a machine-checkable success flag, a
// human-readable message and an optional payload.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with the given payload.
func OK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, services.ErrInvalidIdentity),
		errors.Is(err, services.ErrSelfFollow):
		return http.StatusBadRequest, true
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, services.ErrAlreadyFollowing),
		errors.Is(err, services.ErrNotFollowing),
		errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrNotLiked):
		return http.StatusConflict, true
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, true
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}

// NewHTTPErrorHandler builds the Echo error handler. Domain errors keep their
// message; everything else becomes a generic 500 so driver and stack detail
// never reaches a client.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		default:
			if s, ok := statusFor(err); ok {
				status = s
				message = err.Error()
			} else {
				log.Error("unhandled request error",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Request().URL.Path),
					zap.Error(err),
				)
			}
		}
		if status == http.StatusServiceUnavailable {
			// Mid-transaction store failures are wrapped; strip the detail.
			message = "temporary store failure, please retry"
		}

		if writeErr := Fail(c, status, message); writeErr != nil {
			log.Error("write error response failed", zap.Error(writeErr))
		}
	}
}
