package prompts

import (
	"context"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/pagination"
)

// Store is the persistence contract for prompts. It is implemented by the
// relational repository, the local key/value store and the HTTP client.
type Store interface {
	// List returns every prompt, newest first.
	List(ctx context.Context) ([]Prompt, error)
	// Find returns ErrNotFound when no prompt has the id.
	Find(ctx context.Context, id catalog.ID) (*Prompt, error)
	// Create stores a prompt owned by owner (empty for none).
	Create(ctx context.Context, cmd CreateCommand, owner string) (*Prompt, error)
	// Update applies a partial update. An empty command is a no-op.
	Update(ctx context.Context, id catalog.ID, cmd UpdateCommand) error
	// DeleteBatch removes the listed prompts. An empty list is a no-op.
	DeleteBatch(ctx context.Context, ids []catalog.ID) error
}

// System is the server-side prompt domain.
type System interface {
	Store
	Handler() *Handler
	Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)
	Count(ctx context.Context) (int, error)
}
