package users

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/validation"
)

var (
	ErrNotFound           = errors.New("User not found")
	ErrDuplicate          = errors.New("Username already exists")
	ErrInvalidCredentials = errors.New("Invalid username or password")
)

// MapHTTPStatus maps user errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, catalog.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
