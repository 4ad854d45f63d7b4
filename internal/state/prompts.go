package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/pkg/validation"
)

// Prompts is the client view of the prompt collection.
type Prompts struct {
	mu     sync.RWMutex
	items  []prompts.Prompt
	source catalog.Source

	remote prompts.Store
	local  LocalPrompts
	seed   func(time.Time) []prompts.Prompt

	logger *slog.Logger
	now    func() time.Time
}

func NewPrompts(remote prompts.Store, local LocalPrompts, seed func(time.Time) []prompts.Prompt, opts Options) *Prompts {
	opts.defaults()
	return &Prompts{
		remote: remote,
		local:  local,
		seed:   seed,
		logger: opts.Logger.With("state", "prompts"),
		now:    opts.Now,
	}
}

func (s *Prompts) Load(ctx context.Context) error {
	if s.remote != nil {
		items, err := s.remote.List(ctx)
		if err == nil {
			s.set(items, catalog.SourceServer)
			return nil
		}
		s.logger.Warn("remote load failed, using local store", "error", err)
	}

	items, err := s.local.List(ctx)
	if err != nil {
		return fmt.Errorf("load local prompts: %w", err)
	}

	if len(items) == 0 && s.seed != nil {
		items = s.seed(s.now())
		if err := s.local.Replace(ctx, items); err != nil {
			return fmt.Errorf("seed local prompts: %w", err)
		}
	}

	s.set(items, catalog.SourceLocal)
	return nil
}

func (s *Prompts) Items() []prompts.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Prompts) Source() catalog.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Prompts) Find(id catalog.ID) (prompts.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return prompts.Prompt{}, prompts.ErrNotFound
}

func (s *Prompts) Add(ctx context.Context, cmd prompts.CreateCommand, owner string) (prompts.Prompt, error) {
	if err := validation.Struct(cmd); err != nil {
		return prompts.Prompt{}, err
	}

	if s.remote != nil {
		p, err := s.remote.Create(ctx, cmd, owner)
		if err == nil {
			s.mu.Lock()
			s.items = slices.Insert(s.items, 0, *p)
			s.mu.Unlock()
			return *p, nil
		}
		s.logger.Warn("remote create failed, using local store", "error", err)
	}

	p := cmd.Build(catalog.NewLocalID(), s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Insert(s.items, 0, p)
	return p, s.persist(ctx)
}

func (s *Prompts) Update(ctx context.Context, id catalog.ID, cmd prompts.UpdateCommand) error {
	if cmd.Empty() {
		return nil
	}
	if err := validation.Struct(cmd); err != nil {
		return err
	}

	remoteErr := errNoRemote
	if s.remote != nil {
		remoteErr = s.remote.Update(ctx, id, cmd)
		if remoteErr != nil {
			s.logger.Warn("remote update failed, using local store", "id", id, "error", remoteErr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		if remoteErr == nil {
			return nil
		}
		return prompts.ErrNotFound
	}

	cmd.Apply(&s.items[i])
	s.items[i].UpdatedAt = s.now()

	if remoteErr == nil {
		return nil
	}
	return s.persist(ctx)
}

func (s *Prompts) Delete(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}

	remoteOK := false
	if s.remote != nil {
		if err := s.remote.DeleteBatch(ctx, ids); err != nil {
			s.logger.Warn("remote delete failed, using local store", "error", err)
		} else {
			remoteOK = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(p prompts.Prompt) bool {
		return slices.Contains(ids, p.ID)
	})

	if remoteOK {
		return nil
	}
	return s.persist(ctx)
}

func (s *Prompts) set(items []prompts.Prompt, source catalog.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.source = source
}

func (s *Prompts) persist(ctx context.Context) error {
	if err := s.local.Replace(ctx, s.items); err != nil {
		return fmt.Errorf("persist prompts: %w", err)
	}
	return nil
}

func (s *Prompts) index(id catalog.ID) int {
	return slices.IndexFunc(s.items, func(p prompts.Prompt) bool { return p.ID == id })
}
