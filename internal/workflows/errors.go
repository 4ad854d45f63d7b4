package workflows

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/validation"
)

// Error text is part of the HTTP contract.
var (
	ErrNotFound       = errors.New("Workflow not found")
	ErrDuplicate      = errors.New("workflow already exists")
	ErrNoPayload      = errors.New("Workflow has no JSON payload")
	ErrMissingIDs     = errors.New("Missing or invalid ids array")
	ErrMissingBatch   = errors.New("Missing or invalid workflows array")
	ErrMissingID      = errors.New("Missing workflow id")
	ErrMissingCounter = errors.New("Missing id or type")
	ErrInvalidCounter = errors.New(`Invalid type, must be "view" or "download"`)
)

// MapHTTPStatus maps workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoPayload):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingIDs),
		errors.Is(err, ErrMissingBatch),
		errors.Is(err, ErrMissingID),
		errors.Is(err, ErrMissingCounter),
		errors.Is(err, ErrInvalidCounter),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, catalog.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
