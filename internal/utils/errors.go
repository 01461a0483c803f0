package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError carries an HTTP status code alongside a client-safe message.
type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Code: %d, Message: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error { return e.Err }

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a status code and message to an underlying error.
func Wrap(code int, message string, err error) error {
	return &CustomError{Code: code, Message: message, Err: err}
}

// StatusOf reports the status code and client message for err. Errors that
// are not a CustomError map to 500 with a generic message.
func StatusOf(err error) (int, string) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code, ce.Message
	}
	return http.StatusInternalServerError, "internal error"
}
