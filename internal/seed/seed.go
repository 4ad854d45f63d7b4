package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/gallery/internal/config"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/validation"
)

// Counter reports how many rows a collection holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// PromptTarget is a prompt store that can report its size.
type PromptTarget interface {
	prompts.Store
	Counter
}

// WorkflowTarget is a workflow store that can report its size.
type WorkflowTarget interface {
	workflows.Store
	Counter
}

// Admin creates the administrator account.
type Admin interface {
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

// Result reports what a run inserted.
type Result struct {
	Prompts   int  `json:"prompts"`
	Workflows int  `json:"workflows"`
	Admin     bool `json:"admin"`
}

// Seeder loads the built-in catalog into the relational store.
type Seeder struct {
	catalog   *Catalog
	prompts   PromptTarget
	workflows WorkflowTarget
	admin     Admin
	logger    *slog.Logger
}

func New(c *Catalog, p PromptTarget, w WorkflowTarget, admin Admin, logger *slog.Logger) *Seeder {
	return &Seeder{
		catalog:   c,
		prompts:   p,
		workflows: w,
		admin:     admin,
		logger:    logger.With("system", "seed"),
	}
}

// Run creates the admin account when a password is configured, then inserts
// each collection only when it is empty. Every step runs even when an earlier
// one fails; failed items are logged and skipped and the step errors are
// returned together. Running it again changes nothing.
func (s *Seeder) Run(ctx context.Context, cfg config.AdminConfig) (Result, error) {
	var res Result
	var errs []error

	if cfg.Password == "" {
		s.logger.Warn("admin password not configured, admin account skipped")
	} else {
		created, err := s.admin.EnsureAdmin(ctx, cfg.Username, cfg.Password)
		if err != nil {
			s.logger.Error("seed admin failed", "username", cfg.Username, "error", err)
			errs = append(errs, fmt.Errorf("seed admin: %w", err))
		}
		res.Admin = created
	}

	n, err := seedAll(ctx, s, "prompts", s.prompts, s.catalog.PromptCommands(),
		func(cmd prompts.CreateCommand) (string, error) {
			_, err := s.prompts.Create(ctx, cmd, "")
			return cmd.Title, err
		})
	res.Prompts = n
	if err != nil {
		errs = append(errs, err)
	}

	n, err = seedAll(ctx, s, "workflows", s.workflows, s.catalog.WorkflowCommands(),
		func(cmd workflows.CreateCommand) (string, error) {
			_, err := s.workflows.Create(ctx, cmd, "")
			return cmd.Title, err
		})
	res.Workflows = n
	if err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("seed complete", "prompts", res.Prompts, "workflows", res.Workflows, "admin", res.Admin, "failed", len(errs))
	return res, errors.Join(errs...)
}

// seedAll inserts cmds when the target is empty and reports how many went in.
func seedAll[C any](ctx context.Context, s *Seeder, kind string, target Counter, cmds []C, create func(C) (string, error)) (int, error) {
	n, err := target.Count(ctx)
	if err != nil {
		s.logger.Error("seed count failed", "collection", kind, "error", err)
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	if n > 0 {
		return 0, nil
	}

	var inserted, failed int
	var first error
	for _, cmd := range cmds {
		title, err := create(cmd)
		if err != nil {
			s.logger.Error("seed item failed", "collection", kind, "title", title, "error", err)
			if first == nil {
				first = fmt.Errorf("seed %s %q: %w", kind, title, err)
			}
			failed++
			continue
		}
		inserted++
	}

	if failed > 0 {
		return inserted, fmt.Errorf("%d of %d %s not seeded: %w", failed, len(cmds), kind, first)
	}
	return inserted, nil
}

// Validate checks every built-in item against the create rules.
func (c *Catalog) Validate() error {
	for _, cmd := range c.PromptCommands() {
		if err := validation.Struct(cmd); err != nil {
			return fmt.Errorf("prompt %q: %w", cmd.Title, err)
		}
	}
	for _, cmd := range c.WorkflowCommands() {
		if err := validation.Struct(cmd); err != nil {
			return fmt.Errorf("workflow %q: %w", cmd.Title, err)
		}
	}
	return nil
}

var _ Admin = users.System(nil)
