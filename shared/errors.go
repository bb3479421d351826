package shared

import (
	"errors"
	"net/http"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error

	// RetryAfter, in seconds, is sent as the Retry-After header when positive.
	RetryAfter int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithRetryAfter(seconds int) *AppError {
	e.RetryAfter = seconds
	return e
}

func NewAppError(statusCode int, err error, message string, data interface{}) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message, nil)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message, nil)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message, nil)
}

// NewTooManyRequestsError covers both rate limiting and quota exhaustion, data carries the
// caller-facing hints (retryAfter, blocked, limitExceeded).
func NewTooManyRequestsError(message string, data interface{}) *AppError {
	return NewAppError(http.StatusTooManyRequests, nil, message, data)
}

func NewServiceUnavailableError(err error, message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, err, message, nil)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message, nil)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
