package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spigell/resume-scorer/internal/scoring"
	"github.com/spigell/resume-scorer/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStoreDisabled is returned by endpoints that need the result store when it is not configured.
var ErrStoreDisabled = errors.New("result store is disabled")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, scoring.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, scoring.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, scoring.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
