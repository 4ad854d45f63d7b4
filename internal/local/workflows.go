package local

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

// statsTable maps the text form of a workflow id to its counters.
type statsTable map[string]workflows.Stats

// Workflows implements workflows.Store over the WorkflowsKey document.
// Counters live apart from the items in the StatsKey document; List
// reports the larger of the two values for each counter.
type Workflows struct {
	kv  *kvstore.Store
	now func() time.Time
}

var _ workflows.Store = (*Workflows)(nil)

func (s *Workflows) List(ctx context.Context) ([]workflows.Workflow, error) {
	items, _, err := kvstore.GetJSON[[]workflows.Workflow](ctx, s.kv, WorkflowsKey)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if items == nil {
		return []workflows.Workflow{}, nil
	}

	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Images == nil {
			items[i].Images = []string{}
		}
		if st, ok := stats[items[i].ID.String()]; ok {
			items[i].Views = max(items[i].Views, st.Views)
			items[i].Downloads = max(items[i].Downloads, st.Downloads)
		}
	}
	return items, nil
}

func (s *Workflows) Find(ctx context.Context, id catalog.ID) (*workflows.Workflow, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(items, func(w workflows.Workflow) bool { return w.ID == id })
	if i < 0 {
		return nil, workflows.ErrNotFound
	}
	return &items[i], nil
}

// Create prepends the workflow under a fresh local id with zeroed counters.
func (s *Workflows) Create(ctx context.Context, cmd workflows.CreateCommand, owner string) (*workflows.Workflow, error) {
	item := cmd.Build(catalog.NewLocalID(), s.now())

	_, err := kvstore.UpdateJSON(ctx, s.kv, WorkflowsKey, func(items *[]workflows.Workflow) error {
		*items = append([]workflows.Workflow{item}, *items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	return &item, nil
}

func (s *Workflows) Update(ctx context.Context, id catalog.ID, cmd workflows.UpdateCommand) error {
	if cmd.Empty() {
		return nil
	}

	_, err := kvstore.UpdateJSON(ctx, s.kv, WorkflowsKey, func(items *[]workflows.Workflow) error {
		i := slices.IndexFunc(*items, func(w workflows.Workflow) bool { return w.ID == id })
		if i < 0 {
			return workflows.ErrNotFound
		}
		cmd.Apply(&(*items)[i])
		(*items)[i].UpdatedAt = s.now()
		return nil
	})
	return err
}

// DeleteBatch removes the workflows and their counters.
func (s *Workflows) DeleteBatch(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := kvstore.UpdateJSON(ctx, s.kv, WorkflowsKey, func(items *[]workflows.Workflow) error {
		*items = slices.DeleteFunc(*items, func(w workflows.Workflow) bool {
			return slices.Contains(ids, w.ID)
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete workflows: %w", err)
	}

	_, err = kvstore.UpdateJSON(ctx, s.kv, StatsKey, func(stats *statsTable) error {
		for _, id := range ids {
			delete(*stats, id.String())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete workflow stats: %w", err)
	}
	return nil
}

func (s *Workflows) IncrementViews(ctx context.Context, id catalog.ID) (int64, error) {
	st, err := s.increment(ctx, id, workflows.View)
	return st.Views, err
}

func (s *Workflows) IncrementDownloads(ctx context.Context, id catalog.ID) (int64, error) {
	st, err := s.increment(ctx, id, workflows.Download)
	return st.Downloads, err
}

func (s *Workflows) Stats(ctx context.Context, id catalog.ID) (workflows.Stats, error) {
	if id == "" {
		return workflows.Stats{}, workflows.ErrMissingID
	}

	stats, err := s.stats(ctx)
	if err != nil {
		return workflows.Stats{}, err
	}
	return stats[id.String()], nil
}

// Replace overwrites the stored collection. Counters are left untouched.
func (s *Workflows) Replace(ctx context.Context, items []workflows.Workflow) error {
	if items == nil {
		items = []workflows.Workflow{}
	}
	if err := kvstore.PutJSON(ctx, s.kv, WorkflowsKey, items); err != nil {
		return fmt.Errorf("replace workflows: %w", err)
	}
	return nil
}

func (s *Workflows) increment(ctx context.Context, id catalog.ID, c workflows.Counter) (workflows.Stats, error) {
	if id == "" {
		return workflows.Stats{}, workflows.ErrMissingID
	}

	var entry workflows.Stats
	_, err := kvstore.UpdateJSON(ctx, s.kv, StatsKey, func(stats *statsTable) error {
		if *stats == nil {
			*stats = statsTable{}
		}
		entry = (*stats)[id.String()]
		switch c {
		case workflows.View:
			entry.Views++
		case workflows.Download:
			entry.Downloads++
		}
		(*stats)[id.String()] = entry
		return nil
	})
	if err != nil {
		return workflows.Stats{}, fmt.Errorf("increment %s: %w", c, err)
	}
	return entry, nil
}

func (s *Workflows) stats(ctx context.Context) (statsTable, error) {
	stats, _, err := kvstore.GetJSON[statsTable](ctx, s.kv, StatsKey)
	if err != nil {
		// an unreadable stats document reads as no counters
		return statsTable{}, nil
	}
	return stats, nil
}
