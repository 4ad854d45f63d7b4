package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/validation"
)

// Importer is implemented by remote stores that accept a whole batch in one
// request.
type Importer interface {
	Import(ctx context.Context, req workflows.ImportRequest) (int, []workflows.ImportError, error)
}

// Workflows is the client view of the workflow collection.
type Workflows struct {
	mu     sync.RWMutex
	items  []workflows.Workflow
	source catalog.Source
	loaded bool

	remote workflows.Store
	local  LocalWorkflows
	seed   func(time.Time) []workflows.Workflow

	policy MergePolicy
	logger *slog.Logger
	now    func() time.Time
}

// NewWorkflows builds the container. remote may be nil for local-only use;
// seed supplies the collection written into an empty local store.
func NewWorkflows(remote workflows.Store, local LocalWorkflows, seed func(time.Time) []workflows.Workflow, opts Options) *Workflows {
	opts.defaults()
	return &Workflows{
		remote: remote,
		local:  local,
		seed:   seed,
		policy: opts.Policy,
		logger: opts.Logger.With("state", "workflows"),
		now:    opts.Now,
	}
}

// Load reads the collection from the remote, or from the local store when
// the remote is absent or fails. An empty local store is seeded first.
func (s *Workflows) Load(ctx context.Context) error {
	if s.remote != nil {
		items, err := s.remote.List(ctx)
		if err == nil {
			s.mergeLocalStats(ctx, items)
			s.set(items, catalog.SourceServer)
			return nil
		}
		s.logger.Warn("remote load failed, using local store", "error", err)
	}

	items, err := s.local.List(ctx)
	if err != nil {
		return fmt.Errorf("load local workflows: %w", err)
	}

	if len(items) == 0 && s.seed != nil {
		if err := s.local.Replace(ctx, s.seed(s.now())); err != nil {
			return fmt.Errorf("seed local workflows: %w", err)
		}
		if items, err = s.local.List(ctx); err != nil {
			return fmt.Errorf("load local workflows: %w", err)
		}
	}

	s.set(items, catalog.SourceLocal)
	return nil
}

// Items returns a copy of the loaded collection.
func (s *Workflows) Items() []workflows.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Source reports where the collection was loaded from.
func (s *Workflows) Source() catalog.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Workflows) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Workflows) Find(id catalog.ID) (workflows.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return workflows.Workflow{}, workflows.ErrNotFound
}

// Add creates a workflow and prepends it to the collection.
func (s *Workflows) Add(ctx context.Context, cmd workflows.CreateCommand, owner string) (workflows.Workflow, error) {
	if err := validation.Struct(cmd); err != nil {
		return workflows.Workflow{}, err
	}

	if s.remote != nil {
		w, err := s.remote.Create(ctx, cmd, owner)
		if err == nil {
			s.mu.Lock()
			s.items = slices.Insert(s.items, 0, *w)
			s.mu.Unlock()
			return *w, nil
		}
		s.logger.Warn("remote create failed, using local store", "error", err)
	}

	w := cmd.Build(catalog.NewLocalID(), s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Insert(s.items, 0, w)
	return w, s.persist(ctx)
}

// Import adds many workflows at once and returns how many were added.
func (s *Workflows) Import(ctx context.Context, cmds []workflows.CreateCommand, owner string) (int, error) {
	if len(cmds) == 0 {
		return 0, workflows.ErrMissingBatch
	}

	if imp, ok := s.remote.(Importer); ok {
		n, failures, err := imp.Import(ctx, workflows.ImportRequest{Workflows: cmds, UserID: catalog.ID(owner)})
		if err == nil {
			for _, f := range failures {
				s.logger.Warn("workflow not imported", "title", f.Workflow, "error", f.Error)
			}
			return n, s.Load(ctx)
		}
		s.logger.Warn("remote import failed, using local store", "error", err)
	}

	isCustom := true
	added := make([]workflows.Workflow, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd.Category == "" {
			cmd.Category = workflows.Other
		}
		cmd.IsCustom = &isCustom
		if err := validation.Struct(cmd); err != nil {
			s.logger.Warn("workflow not imported", "title", cmd.Title, "error", err)
			continue
		}
		added = append(added, cmd.Build(catalog.NewLocalID(), s.now()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(added, s.items...)
	return len(added), s.persist(ctx)
}

// Update applies a partial update. An empty command is a no-op.
func (s *Workflows) Update(ctx context.Context, id catalog.ID, cmd workflows.UpdateCommand) error {
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
		return workflows.ErrNotFound
	}

	cmd.Apply(&s.items[i])
	s.items[i].UpdatedAt = s.now()

	if remoteErr == nil {
		return nil
	}
	return s.persist(ctx)
}

// Delete removes the listed workflows. An empty list is a no-op.
func (s *Workflows) Delete(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}

	remoteOK := false
	if s.remote != nil {
		err := s.remote.DeleteBatch(ctx, ids)
		if err == nil {
			remoteOK = true
		} else {
			s.logger.Warn("remote delete failed, using local store", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(w workflows.Workflow) bool {
		return slices.Contains(ids, w.ID)
	})

	if remoteOK {
		return nil
	}
	if err := s.local.DeleteBatch(ctx, ids); err != nil {
		return err
	}
	return s.persist(ctx)
}

func (s *Workflows) IncrementViews(ctx context.Context, id catalog.ID) (int64, error) {
	return s.increment(ctx, id, workflows.View)
}

func (s *Workflows) IncrementDownloads(ctx context.Context, id catalog.ID) (int64, error) {
	return s.increment(ctx, id, workflows.Download)
}

// Download returns the workflow payload with its attachment filename and
// counts the download.
func (s *Workflows) Download(ctx context.Context, id catalog.ID) ([]byte, string, error) {
	w, err := s.Find(id)
	if err != nil {
		return nil, "", err
	}
	if w.WorkflowJSON == "" {
		return nil, "", workflows.ErrNoPayload
	}

	if _, err := s.IncrementDownloads(ctx, id); err != nil {
		s.logger.Warn("download not counted", "id", id, "error", err)
	}
	return []byte(w.WorkflowJSON), workflows.Filename(w.Title) + ".json", nil
}

// increment accepts the remote count only when it is positive. Otherwise the
// local stats entry is incremented and the in-memory item bumped by one.
func (s *Workflows) increment(ctx context.Context, id catalog.ID, c workflows.Counter) (int64, error) {
	if id == "" {
		return 0, workflows.ErrMissingID
	}

	if s.remote != nil {
		n, err := workflows.Increment(ctx, s.remote, id, c)
		if err == nil && n > 0 {
			s.mu.Lock()
			if i := s.index(id); i >= 0 {
				setCounter(&s.items[i], c, n)
			}
			s.mu.Unlock()
			return n, nil
		}
		if err != nil {
			s.logger.Warn("remote increment failed, using local store", "id", id, "counter", c, "error", err)
		}
	}

	n, err := workflows.Increment(ctx, s.local, id, c)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	if i := s.index(id); i >= 0 {
		setCounter(&s.items[i], c, counter(s.items[i], c)+1)
	}
	err = s.persist(ctx)
	s.mu.Unlock()
	return n, err
}

// mergeLocalStats reconciles remote counters with the local stats document.
func (s *Workflows) mergeLocalStats(ctx context.Context, items []workflows.Workflow) {
	if s.policy == RemoteWins {
		return
	}
	for i := range items {
		st, err := s.local.Stats(ctx, items[i].ID)
		if err != nil {
			continue
		}
		items[i].Views = s.policy.Merge(items[i].Views, st.Views)
		items[i].Downloads = s.policy.Merge(items[i].Downloads, st.Downloads)
	}
}

func (s *Workflows) set(items []workflows.Workflow, source catalog.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.source = source
	s.loaded = true
}

// persist writes the collection to the local store. Callers hold s.mu.
func (s *Workflows) persist(ctx context.Context) error {
	if err := s.local.Replace(ctx, s.items); err != nil {
		return fmt.Errorf("persist workflows: %w", err)
	}
	return nil
}

func (s *Workflows) index(id catalog.ID) int {
	return slices.IndexFunc(s.items, func(w workflows.Workflow) bool { return w.ID == id })
}

func counter(w workflows.Workflow, c workflows.Counter) int64 {
	if c == workflows.Download {
		return w.Downloads
	}
	return w.Views
}

func setCounter(w *workflows.Workflow, c workflows.Counter, n int64) {
	if c == workflows.Download {
		w.Downloads = n
		return
	}
	w.Views = n
}
