package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries an HTTP status and a stable machine readable key.
// The wrapped error is logged but its text is only sent to clients for 4xx.
type HTTPError struct {
	Code int
	Key  string
	Err  error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e HTTPError) Unwrap() error {
	return e.Err
}

// Message returns the client facing message.
func (e HTTPError) Message() string {
	if e.Err != nil && e.Code < http.StatusInternalServerError {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

// NewHTTPError wraps err with an HTTP status and key.
func NewHTTPError(code int, key string, err error) HTTPError {
	return HTTPError{Code: code, Key: key, Err: err}
}

func BadRequest(key string, err error) HTTPError {
	return NewHTTPError(http.StatusBadRequest, key, err)
}

func NotFound(key string, err error) HTTPError {
	return NewHTTPError(http.StatusNotFound, key, err)
}

func Conflict(key string, err error) HTTPError {
	return NewHTTPError(http.StatusConflict, key, err)
}

// ValidationError represents field validation errors.
type ValidationError url.Values

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for field, messages := range e {
		if len(messages) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, messages[0]))
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// NewValidationError creates a new validation error.
func NewValidationError() ValidationError {
	return make(ValidationError)
}

// Add adds an error message for a field.
func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// Has checks if a field has any errors.
func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

// IsEmpty returns true if there are no validation errors.
func (e ValidationError) IsEmpty() bool {
	return len(e) == 0
}
