package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/gallery/pkg/handlers"
)

// Recover converts a handler panic into a 500 JSON error response.
func Recover(logger *slog.Logger) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					handlers.RespondError(
						w, logger,
						http.StatusInternalServerError,
						fmt.Errorf("internal error: %v", v),
					)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBytes caps request bodies at limit bytes. Reads past the limit fail with *http.MaxBytesError.
func MaxBytes(limit int64) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
