package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Engrjalalkhan/easydoctor/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retriable bool   `json:"retriable,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. AppError codes keep their
// taxonomy value in the body so clients can route on them; anything
// else collapses to a generic 500.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	c.JSON(statusFor(appErr.Code), Response{
		Success: false,
		Error: &Error{
			Code:      int(appErr.Code),
			Message:   appErr.Message,
			Retriable: appErr.Retriable,
		},
	})
}

// RespondWithRetriable reports a degraded-but-usable outcome: the data
// (typically an empty roster) plus the retriable error flag, so the
// screen stays usable instead of crashing.
func RespondWithRetriable(c *gin.Context, data interface{}, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.StoreUnavailable(err)
	}

	c.JSON(statusFor(appErr.Code), Response{
		Success: false,
		Data:    data,
		Error: &Error{
			Code:      int(appErr.Code),
			Message:   appErr.Message,
			Retriable: appErr.Retriable,
		},
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrValidation:
		return http.StatusBadRequest
	case errors.ErrInvalidCredentials, errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrProfileMissing, errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
