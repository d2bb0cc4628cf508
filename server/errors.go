package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for HTTP translation
type ErrorKind int

const (
	// KindBadRequest covers missing or invalid input, unsupported
	// extensions and malformed parameters
	KindBadRequest ErrorKind = iota

	// KindNotFound covers downloads of missing artifacts
	KindNotFound

	// KindConversion covers collaborator failures such as corrupt input documents
	KindConversion

	// KindEnvironment covers missing external tools
	KindEnvironment

	// KindIO covers storage failures
	KindIO
)

// Error is the single error type crossing the handler boundary. Handlers
// return it instead of raw collaborator errors so the HTTP layer can map
// every failure to a status code and a JSON body in one place.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for the error kind
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest creates a client-input error
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a missing-artifact error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ConversionFailed wraps a collaborator failure, keeping the underlying cause
func ConversionFailed(cause error) *Error {
	return &Error{Kind: KindConversion, Message: "conversion failed", Cause: cause}
}

// EnvironmentError reports a missing or broken external tool
func EnvironmentError(message string, cause error) *Error {
	return &Error{Kind: KindEnvironment, Message: message, Cause: cause}
}

// IOFailed wraps a storage failure
func IOFailed(cause error) *Error {
	return &Error{Kind: KindIO, Message: "storage failure", Cause: cause}
}

// AsError normalizes any error into *Error. Storage sentinels map to their
// kinds; everything else is treated as a conversion failure so raw internal
// errors never escape the boundary uninterpreted.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, ErrNotFound) {
		return NotFound("File not found")
	}
	if errors.Is(err, ErrInvalidName) {
		return BadRequest("invalid file name")
	}
	return ConversionFailed(err)
}
