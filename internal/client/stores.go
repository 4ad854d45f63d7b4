package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/workflows"
)

type deleteBatchRequest struct {
	IDs []catalog.ID `json:"ids"`
}

// Prompts implements prompts.Store over /prompts.
type Prompts struct {
	c *Client
}

var _ prompts.Store = (*Prompts)(nil)

func (p *Prompts) List(ctx context.Context) ([]prompts.Prompt, error) {
	var out struct {
		Prompts []prompts.Prompt `json:"prompts"`
	}
	if err := p.c.call(ctx, http.MethodGet, "/prompts", nil, &out); err != nil {
		return nil, err
	}
	if out.Prompts == nil {
		out.Prompts = []prompts.Prompt{}
	}
	return out.Prompts, nil
}

func (p *Prompts) Find(ctx context.Context, id catalog.ID) (*prompts.Prompt, error) {
	var out struct {
		Prompt *prompts.Prompt `json:"prompt"`
	}
	if err := p.c.call(ctx, http.MethodGet, "/prompts/"+escapeID(id), nil, &out); err != nil {
		return nil, notFoundAs(err, prompts.ErrNotFound)
	}
	return out.Prompt, nil
}

func (p *Prompts) Create(ctx context.Context, cmd prompts.CreateCommand, owner string) (*prompts.Prompt, error) {
	if owner != "" {
		cmd.UserID = catalog.ID(owner)
	}

	var out struct {
		Prompt *prompts.Prompt `json:"prompt"`
	}
	if err := p.c.call(ctx, http.MethodPost, "/prompts", cmd, &out); err != nil {
		return nil, err
	}
	return out.Prompt, nil
}

func (p *Prompts) Update(ctx context.Context, id catalog.ID, cmd prompts.UpdateCommand) error {
	err := p.c.call(ctx, http.MethodPut, "/prompts/"+escapeID(id), cmd, nil)
	return notFoundAs(err, prompts.ErrNotFound)
}

func (p *Prompts) DeleteBatch(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return p.c.call(ctx, http.MethodDelete, "/prompts/batch", deleteBatchRequest{IDs: ids}, nil)
}

// Workflows implements workflows.Store over /workflows.
type Workflows struct {
	c *Client
}

var _ workflows.Store = (*Workflows)(nil)

func (s *Workflows) List(ctx context.Context) ([]workflows.Workflow, error) {
	var out struct {
		Workflows []workflows.Workflow `json:"workflows"`
	}
	if err := s.c.call(ctx, http.MethodGet, "/workflows", nil, &out); err != nil {
		return nil, err
	}
	if out.Workflows == nil {
		out.Workflows = []workflows.Workflow{}
	}
	return out.Workflows, nil
}

func (s *Workflows) Find(ctx context.Context, id catalog.ID) (*workflows.Workflow, error) {
	var out struct {
		Workflow *workflows.Workflow `json:"workflow"`
	}
	if err := s.c.call(ctx, http.MethodGet, "/workflows/"+escapeID(id), nil, &out); err != nil {
		return nil, notFoundAs(err, workflows.ErrNotFound)
	}
	return out.Workflow, nil
}

func (s *Workflows) Create(ctx context.Context, cmd workflows.CreateCommand, owner string) (*workflows.Workflow, error) {
	if owner != "" {
		cmd.UserID = catalog.ID(owner)
	}

	var out struct {
		Workflow *workflows.Workflow `json:"workflow"`
	}
	if err := s.c.call(ctx, http.MethodPost, "/workflows", cmd, &out); err != nil {
		return nil, err
	}
	return out.Workflow, nil
}

func (s *Workflows) Update(ctx context.Context, id catalog.ID, cmd workflows.UpdateCommand) error {
	err := s.c.call(ctx, http.MethodPut, "/workflows/"+escapeID(id), cmd, nil)
	return notFoundAs(err, workflows.ErrNotFound)
}

func (s *Workflows) DeleteBatch(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.c.call(ctx, http.MethodDelete, "/workflows/batch", deleteBatchRequest{IDs: ids}, nil)
}

func (s *Workflows) IncrementViews(ctx context.Context, id catalog.ID) (int64, error) {
	return s.increment(ctx, id, workflows.View)
}

func (s *Workflows) IncrementDownloads(ctx context.Context, id catalog.ID) (int64, error) {
	return s.increment(ctx, id, workflows.Download)
}

func (s *Workflows) Stats(ctx context.Context, id catalog.ID) (workflows.Stats, error) {
	var out workflows.Stats
	err := s.c.call(ctx, http.MethodGet, "/workflows/stats?id="+url.QueryEscape(id.String()), nil, &out)
	return out, err
}

// Import creates many workflows in one request and returns how many the
// server accepted along with the per-item failures.
func (s *Workflows) Import(ctx context.Context, req workflows.ImportRequest) (int, []workflows.ImportError, error) {
	var out struct {
		Imported int                     `json:"imported"`
		Errors   []workflows.ImportError `json:"errors"`
	}
	if err := s.c.call(ctx, http.MethodPost, "/workflows/batch", req, &out); err != nil {
		return 0, nil, err
	}
	return out.Imported, out.Errors, nil
}

func (s *Workflows) increment(ctx context.Context, id catalog.ID, c workflows.Counter) (int64, error) {
	var out struct {
		Count  int64          `json:"count"`
		Source catalog.Source `json:"source"`
	}
	req := workflows.CounterRequest{ID: id, Type: c}
	if err := s.c.call(ctx, http.MethodPost, "/workflows/stats", req, &out); err != nil {
		return 0, err
	}
	if out.Source != catalog.SourceServer {
		return 0, fmt.Errorf("%w: source %q", ErrNotServer, out.Source)
	}
	return out.Count, nil
}

// Favorites implements favorites.Store over /favorites.
type Favorites struct {
	c *Client
}

var _ favorites.Store = (*Favorites)(nil)

func (f *Favorites) List(ctx context.Context, kind favorites.Kind, owner string) ([]catalog.ID, error) {
	if !kind.Valid() {
		return nil, favorites.ErrInvalidKind
	}

	var out struct {
		Favorites []catalog.ID `json:"favorites"`
	}
	path := fmt.Sprintf("/favorites/%s?userId=%s", kind, url.QueryEscape(owner))
	if err := f.c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Favorites == nil {
		out.Favorites = []catalog.ID{}
	}
	return out.Favorites, nil
}

func (f *Favorites) Add(ctx context.Context, kind favorites.Kind, owner string, id catalog.ID) error {
	return f.toggle(ctx, http.MethodPost, kind, owner, id)
}

func (f *Favorites) Remove(ctx context.Context, kind favorites.Kind, owner string, id catalog.ID) error {
	return f.toggle(ctx, http.MethodDelete, kind, owner, id)
}

func (f *Favorites) toggle(ctx context.Context, method string, kind favorites.Kind, owner string, id catalog.ID) error {
	req := favorites.ToggleRequest{UserID: catalog.ID(owner)}
	switch kind {
	case favorites.Prompts:
		req.PromptID = id
	case favorites.Workflows:
		req.WorkflowID = id
	default:
		return favorites.ErrInvalidKind
	}
	return f.c.call(ctx, method, "/favorites/"+string(kind), req, nil)
}
