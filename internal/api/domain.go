package api

import (
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/snapshots"
	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/internal/workflows"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts   prompts.System
	Workflows workflows.System
	Favorites favorites.System
	Users     users.System
	Snapshots snapshots.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.DB()

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)
	workflowsSystem := workflows.New(db, runtime.Logger, runtime.Pagination)

	return &Domain{
		Prompts:   promptsSystem,
		Workflows: workflowsSystem,
		Favorites: favorites.New(db, runtime.Logger),
		Users:     users.New(db, runtime.Logger),
		Snapshots: snapshots.New(
			runtime.Storage,
			promptsSystem,
			workflowsSystem,
			runtime.Logger,
			runtime.MaxListSize,
		),
	}
}
