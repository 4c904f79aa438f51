package errors

import (
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type QuizzbuzzError struct {
	Code        int
	Message     string
	Description string
}

func (q QuizzbuzzError) Error() string {
	return q.Message
}

const (
	descInvalidIdentifier = "invalid identifier"
	descNotFound          = "resource not found"
	descMapping           = "stored document is malformed"
	descConnection        = "document store unavailable"
	descBadRequest        = "malformed request body"
)

func NewInvalidIdentifier(msg string) QuizzbuzzError {
	return QuizzbuzzError{
		Code:        http.StatusBadRequest,
		Message:     msg,
		Description: descInvalidIdentifier,
	}
}

func NewNotFound(msg string) QuizzbuzzError {
	return QuizzbuzzError{
		Code:        http.StatusNotFound,
		Message:     msg,
		Description: descNotFound,
	}
}

func NewMappingError(msg string) QuizzbuzzError {
	return QuizzbuzzError{
		Code:        http.StatusInternalServerError,
		Message:     msg,
		Description: descMapping,
	}
}

func NewConnectionError(msg string) QuizzbuzzError {
	return QuizzbuzzError{
		Code:        http.StatusInternalServerError,
		Message:     msg,
		Description: descConnection,
	}
}

func NewBadRequest(msg string) QuizzbuzzError {
	return QuizzbuzzError{
		Code:        http.StatusBadRequest,
		Message:     msg,
		Description: descBadRequest,
	}
}

// As returns the QuizzbuzzError carried by err, looking through any wrapping.
func As(err error) (QuizzbuzzError, bool) {
	var qe QuizzbuzzError
	if err == nil {
		return qe, false
	}
	ok := pkgerrors.As(err, &qe)
	return qe, ok
}

func is(err error, description string) bool {
	qe, ok := As(err)
	return ok && qe.Description == description
}

func IsInvalidIdentifier(err error) bool {
	return is(err, descInvalidIdentifier)
}

func IsNotFound(err error) bool {
	return is(err, descNotFound)
}

func IsMappingError(err error) bool {
	return is(err, descMapping)
}

func IsConnectionError(err error) bool {
	return is(err, descConnection)
}

func IsBadRequest(err error) bool {
	return is(err, descBadRequest)
}

// HTTPStatus maps err to the status code returned to clients. Unclassified errors are 500.
func HTTPStatus(err error) int {
	if qe, ok := As(err); ok {
		return qe.Code
	}
	return http.StatusInternalServerError
}

// Kind is the short machine-readable name used as the "type" of an error payload.
func Kind(err error) string {
	switch {
	case IsInvalidIdentifier(err):
		return "invalidid"
	case IsNotFound(err):
		return "notfound"
	case IsBadRequest(err):
		return "badrequest"
	default:
		return "internalerror"
	}
}
