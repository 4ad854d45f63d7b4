package workflows

import (
	"context"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/pagination"
)

// Store is the persistence contract for workflows and their counters.
type Store interface {
	// List returns every workflow, newest first.
	List(ctx context.Context) ([]Workflow, error)
	// Find returns ErrNotFound when no workflow has the id.
	Find(ctx context.Context, id catalog.ID) (*Workflow, error)
	// Create stores a workflow owned by owner (empty for none) with zeroed counters.
	Create(ctx context.Context, cmd CreateCommand, owner string) (*Workflow, error)
	// Update applies a partial update. An empty command is a no-op.
	Update(ctx context.Context, id catalog.ID, cmd UpdateCommand) error
	// DeleteBatch removes the listed workflows and their counters. An empty list is a no-op.
	DeleteBatch(ctx context.Context, ids []catalog.ID) error
	// IncrementViews adds one view and returns the new total. The first
	// increment for an id returns 1.
	IncrementViews(ctx context.Context, id catalog.ID) (int64, error)
	// IncrementDownloads adds one download and returns the new total.
	IncrementDownloads(ctx context.Context, id catalog.ID) (int64, error)
	// Stats returns the counters for id, zero when none were recorded.
	Stats(ctx context.Context, id catalog.ID) (Stats, error)
}

// Increment dispatches to the counter c names.
func Increment(ctx context.Context, s Store, id catalog.ID, c Counter) (int64, error) {
	switch c {
	case View:
		return s.IncrementViews(ctx, id)
	case Download:
		return s.IncrementDownloads(ctx, id)
	default:
		return 0, ErrInvalidCounter
	}
}

// System is the server-side workflow domain.
type System interface {
	Store
	Handler() *Handler
	Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Workflow], error)
	Count(ctx context.Context) (int, error)
}
