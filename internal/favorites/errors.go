package favorites

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/gallery/pkg/database"
)

var (
	ErrInvalidKind     = errors.New("unknown favorites kind")
	ErrMissingOwner    = errors.New("userId is required")
	ErrMissingPrompt   = errors.New("userId and promptId are required")
	ErrMissingWorkflow = errors.New("userId and workflowId are required")
)

// MapHTTPStatus maps favorites errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrMissingOwner),
		errors.Is(err, ErrMissingPrompt),
		errors.Is(err, ErrMissingWorkflow):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
