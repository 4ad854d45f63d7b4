// Package favorites records which prompts and workflows each owner has
// marked. A favorite has no state beyond its existence.
package favorites

import (
	"context"

	"github.com/JaimeStill/gallery/internal/catalog"
)

// Kind selects the collection a favorite points into.
type Kind string

const (
	Prompts   Kind = "prompts"
	Workflows Kind = "workflows"
)

func (k Kind) Valid() bool {
	return k == Prompts || k == Workflows
}

// Store is the persistence contract for favorites. Add and Remove are
// idempotent.
type Store interface {
	// List returns the ids owner has marked, oldest first. An owner with no
	// favorites gets an empty list.
	List(ctx context.Context, kind Kind, owner string) ([]catalog.ID, error)
	Add(ctx context.Context, kind Kind, owner string, id catalog.ID) error
	Remove(ctx context.Context, kind Kind, owner string, id catalog.ID) error
}

type System interface {
	Store
	Handler() *Handler
}
