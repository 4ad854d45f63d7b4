// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/gallery/internal/config"
	"github.com/JaimeStill/gallery/internal/infrastructure"
	"github.com/JaimeStill/gallery/pkg/handlers"
	"github.com/JaimeStill/gallery/pkg/middleware"
	"github.com/JaimeStill/gallery/pkg/module"
)

// ErrServerStorageDisabled answers every API request outside server mode.
var ErrServerStorageDisabled = errors.New("D1 storage not enabled")

// NewModule creates the API module. Outside server mode no domain is
// built and every route answers 400.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	if cfg.Storage.Server() {
		registerRoutes(mux, NewDomain(runtime))
	} else {
		mux.HandleFunc("/", disabled(runtime.Logger))
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, fmt.Errorf("api base path: %w", err)
	}
	m.Use(
		middleware.Recover(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		middleware.MaxBytes(cfg.API.MaxBodySizeBytes()),
	)

	return m, nil
}

func disabled(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, logger, http.StatusBadRequest, ErrServerStorageDisabled)
	}
}
