package workflows

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/handlers"
	"github.com/JaimeStill/gallery/pkg/pagination"
	"github.com/JaimeStill/gallery/pkg/routes"
	"github.com/JaimeStill/gallery/pkg/validation"
)

// Handler provides HTTP endpoints for workflow operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

type BatchDeleteRequest struct {
	IDs []catalog.ID `json:"ids"`
}

// ImportRequest carries a bulk import. Items imported as initial data are
// not marked custom.
type ImportRequest struct {
	Workflows     []CreateCommand `json:"workflows"`
	UserID        catalog.ID      `json:"userId,omitempty"`
	IsInitialData bool            `json:"isInitialData,omitempty"`
}

// ImportError records one rejected item of a bulk import.
type ImportError struct {
	Workflow string `json:"workflow"`
	Error    string `json:"error"`
}

type CounterRequest struct {
	ID   catalog.ID `json:"id"`
	Type Counter    `json:"type"`
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "workflows"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/workflows",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/batch", Handler: h.Import},
			{Method: "DELETE", Pattern: "/batch", Handler: h.DeleteBatch},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "POST", Pattern: "/stats", Handler: h.Increment},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/download", Handler: h.Download},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"workflows": workflows,
	})
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	workflow, err := h.sys.Find(r.Context(), catalog.ID(r.PathValue("id")))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"workflow": workflow,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := validation.Struct(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	workflow, err := h.sys.Create(r.Context(), cmd, cmd.UserID.String())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"workflow": workflow,
	})
}

// Import creates each workflow in the request independently. A rejected
// item is reported and does not stop the batch.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || len(req.Workflows) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingBatch)
		return
	}

	isCustom := !req.IsInitialData
	var (
		imported int
		failures []ImportError
	)

	for _, cmd := range req.Workflows {
		if cmd.Category == "" {
			cmd.Category = Other
		}
		cmd.IsCustom = &isCustom

		err := validation.Struct(cmd)
		if err == nil {
			_, err = h.sys.Create(r.Context(), cmd, req.UserID.String())
		}
		if err != nil {
			failures = append(failures, ImportError{Workflow: cmd.Title, Error: err.Error()})
			continue
		}
		imported++
	}

	h.logger.Info("workflows imported", "imported", imported, "failed", len(failures))

	body := map[string]any{
		"success":  true,
		"imported": imported,
	}
	if len(failures) > 0 {
		body["errors"] = failures
	}
	handlers.RespondJSON(w, http.StatusOK, body)
}

// Update applies a partial update and responds with the re-read workflow.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.PathValue("id"))

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := validation.Struct(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Update(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	workflow, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"workflow": workflow,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.PathValue("id"))

	if err := h.sys.DeleteBatch(r.Context(), []catalog.ID{id}); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || len(req.IDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingIDs)
		return
	}

	if err := h.sys.DeleteBatch(r.Context(), req.IDs); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": len(req.IDs),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.URL.Query().Get("id"))
	if id == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingID)
		return
	}

	stats, err := h.sys.Stats(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"views":     stats.Views,
		"downloads": stats.Downloads,
		"source":    catalog.SourceServer,
	})
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	var req CounterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.ID == "" || req.Type == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingCounter)
		return
	}

	count, err := Increment(r.Context(), h.sys, req.ID, req.Type)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
		"source":  catalog.SourceServer,
	})
}

// Download serves the stored workflow JSON as an attachment and counts the
// download. A failed increment does not fail the download.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.PathValue("id"))

	workflow, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if workflow.WorkflowJSON == "" {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNoPayload)
		return
	}

	if _, err := h.sys.IncrementDownloads(r.Context(), id); err != nil {
		h.logger.Warn("download not counted", "id", id, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, Filename(workflow.Title)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(workflow.WorkflowJSON))
}

// Search accepts pagination and filter criteria as a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.Search(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// Filename reduces a title to a lowercase dash-separated file stem.
func Filename(title string) string {
	stem := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if stem == "" {
		return "workflow"
	}
	return stem
}
