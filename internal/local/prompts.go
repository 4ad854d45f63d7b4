package local

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

// Prompts implements prompts.Store over the PromptsKey document. The
// document holds the collection newest first.
type Prompts struct {
	kv  *kvstore.Store
	now func() time.Time
}

var _ prompts.Store = (*Prompts)(nil)

func (p *Prompts) List(ctx context.Context) ([]prompts.Prompt, error) {
	items, _, err := kvstore.GetJSON[[]prompts.Prompt](ctx, p.kv, PromptsKey)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	if items == nil {
		items = []prompts.Prompt{}
	}
	return items, nil
}

func (p *Prompts) Find(ctx context.Context, id catalog.ID) (*prompts.Prompt, error) {
	items, err := p.List(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(items, func(item prompts.Prompt) bool { return item.ID == id })
	if i < 0 {
		return nil, prompts.ErrNotFound
	}
	return &items[i], nil
}

// Create prepends the prompt under a fresh local id. The owner is not
// recorded locally.
func (p *Prompts) Create(ctx context.Context, cmd prompts.CreateCommand, owner string) (*prompts.Prompt, error) {
	item := cmd.Build(catalog.NewLocalID(), p.now())

	_, err := kvstore.UpdateJSON(ctx, p.kv, PromptsKey, func(items *[]prompts.Prompt) error {
		*items = append([]prompts.Prompt{item}, *items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	return &item, nil
}

func (p *Prompts) Update(ctx context.Context, id catalog.ID, cmd prompts.UpdateCommand) error {
	if cmd.Empty() {
		return nil
	}

	_, err := kvstore.UpdateJSON(ctx, p.kv, PromptsKey, func(items *[]prompts.Prompt) error {
		i := slices.IndexFunc(*items, func(item prompts.Prompt) bool { return item.ID == id })
		if i < 0 {
			return prompts.ErrNotFound
		}
		cmd.Apply(&(*items)[i])
		(*items)[i].UpdatedAt = p.now()
		return nil
	})
	return err
}

func (p *Prompts) DeleteBatch(ctx context.Context, ids []catalog.ID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := kvstore.UpdateJSON(ctx, p.kv, PromptsKey, func(items *[]prompts.Prompt) error {
		*items = slices.DeleteFunc(*items, func(item prompts.Prompt) bool {
			return slices.Contains(ids, item.ID)
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete prompts: %w", err)
	}
	return nil
}

// Replace overwrites the stored collection.
func (p *Prompts) Replace(ctx context.Context, items []prompts.Prompt) error {
	if items == nil {
		items = []prompts.Prompt{}
	}
	if err := kvstore.PutJSON(ctx, p.kv, PromptsKey, items); err != nil {
		return fmt.Errorf("replace prompts: %w", err)
	}
	return nil
}
