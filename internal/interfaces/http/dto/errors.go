package dto

import (
	"net/http"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Codes produced by the transport layer itself rather than by the domain
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// InternalErrorMessage is the only message callers see for unexpected failures
const InternalErrorMessage = "Internal Server Error"

// kindHTTPStatus maps error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindState:      http.StatusBadRequest,
	shared.KindAuth:       http.StatusUnauthorized,
	shared.KindInternal:   http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for an error kind.
// Unknown kinds are internal errors.
func HTTPStatus(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
