package users

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/handlers"
	"github.com/JaimeStill/gallery/pkg/routes"
	"github.com/JaimeStill/gallery/pkg/validation"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "users"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/auth/login", Handler: h.Login},
			{Method: "POST", Pattern: "/users", Handler: h.Register},
			{Method: "GET", Pattern: "/users/{id}", Handler: h.Find},
		},
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}

	user, err := h.store.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// Register creates a regular account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}

	user, err := h.store.Create(r.Context(), creds.Username, creds.Password, Member)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Find(r.Context(), catalog.ID(r.PathValue("id")))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (h *Handler) credentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	var creds Credentials
	if err := handlers.DecodeJSON(r, &creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return creds, false
	}

	if err := validation.Struct(creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return creds, false
	}
	return creds, true
}
