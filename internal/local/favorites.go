package local

import (
	"context"
	"fmt"
	"slices"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

// favoritesTable maps an owner (a username locally) to the ids they marked.
type favoritesTable map[string][]catalog.ID

// Favorites implements favorites.Store with one document per kind.
type Favorites struct {
	kv *kvstore.Store
}

var _ favorites.Store = (*Favorites)(nil)

func favoritesKey(kind favorites.Kind) (string, error) {
	switch kind {
	case favorites.Prompts:
		return PromptFavoritesKey, nil
	case favorites.Workflows:
		return WorkflowFavoritesKey, nil
	default:
		return "", favorites.ErrInvalidKind
	}
}

func (f *Favorites) List(ctx context.Context, kind favorites.Kind, owner string) ([]catalog.ID, error) {
	key, err := favoritesKey(kind)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return nil, favorites.ErrMissingOwner
	}

	table, _, err := kvstore.GetJSON[favoritesTable](ctx, f.kv, key)
	if err != nil {
		return nil, fmt.Errorf("list %s favorites: %w", kind, err)
	}

	ids := table[owner]
	if ids == nil {
		ids = []catalog.ID{}
	}
	return ids, nil
}

func (f *Favorites) Add(ctx context.Context, kind favorites.Kind, owner string, id catalog.ID) error {
	return f.update(ctx, kind, owner, id, func(ids []catalog.ID) []catalog.ID {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
}

func (f *Favorites) Remove(ctx context.Context, kind favorites.Kind, owner string, id catalog.ID) error {
	return f.update(ctx, kind, owner, id, func(ids []catalog.ID) []catalog.ID {
		return slices.DeleteFunc(ids, func(v catalog.ID) bool { return v == id })
	})
}

func (f *Favorites) update(ctx context.Context, kind favorites.Kind, owner string, id catalog.ID, fn func([]catalog.ID) []catalog.ID) error {
	key, err := favoritesKey(kind)
	if err != nil {
		return err
	}
	if owner == "" || id == "" {
		if kind == favorites.Prompts {
			return favorites.ErrMissingPrompt
		}
		return favorites.ErrMissingWorkflow
	}

	_, err = kvstore.UpdateJSON(ctx, f.kv, key, func(table *favoritesTable) error {
		if *table == nil {
			*table = favoritesTable{}
		}
		(*table)[owner] = fn((*table)[owner])
		return nil
	})
	if err != nil {
		return fmt.Errorf("update %s favorites: %w", kind, err)
	}
	return nil
}
