package favorites

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/handlers"
	"github.com/JaimeStill/gallery/pkg/routes"
)

// Handler serves favorites for both kinds under /favorites/{kind}.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// ToggleRequest names one favorite. Only the id field matching the route
// kind is read.
type ToggleRequest struct {
	UserID     catalog.ID `json:"userId"`
	PromptID   catalog.ID `json:"promptId,omitempty"`
	WorkflowID catalog.ID `json:"workflowId,omitempty"`
}

func (r ToggleRequest) target(kind Kind) (catalog.ID, error) {
	id, missing := r.PromptID, ErrMissingPrompt
	if kind == Workflows {
		id, missing = r.WorkflowID, ErrMissingWorkflow
	}

	if r.UserID == "" || id == "" {
		return "", missing
	}
	return id, nil
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "favorites"),
	}
}

func (h *Handler) Routes() routes.Group {
	var rs []routes.Route
	for _, kind := range []Kind{Prompts, Workflows} {
		pattern := "/" + string(kind)
		rs = append(rs,
			routes.Route{Method: "GET", Pattern: pattern, Handler: h.list(kind)},
			routes.Route{Method: "POST", Pattern: pattern, Handler: h.toggle(kind, h.store.Add)},
			routes.Route{Method: "DELETE", Pattern: pattern, Handler: h.toggle(kind, h.store.Remove)},
		)
	}

	return routes.Group{
		Prefix: "/favorites",
		Routes: rs,
	}
}

func (h *Handler) list(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("userId")
		if owner == "" {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingOwner)
			return
		}

		ids, err := h.store.List(r.Context(), kind, owner)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		// favorite ids always go out as strings, numeric or not
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}

		handlers.RespondJSON(w, http.StatusOK, map[string]any{"favorites": out})
	}
}

type toggleFunc func(ctx context.Context, kind Kind, owner string, id catalog.ID) error

func (h *Handler) toggle(kind Kind, apply toggleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ToggleRequest
		if err := handlers.DecodeJSON(r, &req); err != nil {
			req = ToggleRequest{}
		}

		id, err := req.target(kind)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}

		if err := apply(r.Context(), kind, req.UserID.String(), id); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		handlers.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
