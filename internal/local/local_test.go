package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/local"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

func open(t *testing.T) (*local.Store, *kvstore.Store) {
	t.Helper()
	kv, err := kvstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return local.New(kv), kv
}

func TestPromptsLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	empty, err := store.Prompts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	start := time.Now().Add(-time.Second)
	first, err := store.Prompts.Create(ctx, prompts.CreateCommand{Title: "one", Prompt: "p", Category: prompts.Code}, "")
	require.NoError(t, err)
	second, err := store.Prompts.Create(ctx, prompts.CreateCommand{Title: "two", Prompt: "p", Category: prompts.MJ}, "")
	require.NoError(t, err)

	assert.False(t, first.ID.IsNumeric())
	assert.Regexp(t, `^\d+-\d+$`, first.ID.String())
	assert.True(t, first.CreatedAt.After(start))
	assert.Equal(t, catalog.Beginner, first.Complexity)

	all, err := store.Prompts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	require.NoError(t, store.Prompts.Update(ctx, first.ID, prompts.UpdateCommand{}))
	title := "uno"
	require.NoError(t, store.Prompts.Update(ctx, first.ID, prompts.UpdateCommand{Title: &title}))

	got, err := store.Prompts.Find(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "uno", got.Title)
	assert.Equal(t, "p", got.Prompt)

	err = store.Prompts.Update(ctx, "missing", prompts.UpdateCommand{Title: &title})
	assert.ErrorIs(t, err, prompts.ErrNotFound)

	require.NoError(t, store.Prompts.DeleteBatch(ctx, nil))
	require.NoError(t, store.Prompts.DeleteBatch(ctx, []catalog.ID{first.ID, second.ID}))

	_, err = store.Prompts.Find(ctx, first.ID)
	assert.ErrorIs(t, err, prompts.ErrNotFound)
}

func TestPromptsDocumentKey(t *testing.T) {
	ctx := context.Background()
	store, kv := open(t)

	_, err := store.Prompts.Create(ctx, prompts.CreateCommand{Title: "t", Prompt: "p", Category: prompts.Code}, "")
	require.NoError(t, err)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{local.PromptsKey}, keys)
}

func TestWorkflowsCreateAndCounters(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	w, err := store.Workflows.Create(ctx, workflows.CreateCommand{Title: "T", Description: "D", Category: workflows.N8N}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{}, w.Images)
	assert.Zero(t, w.Views)
	assert.Zero(t, w.Downloads)

	first, err := store.Workflows.IncrementViews(ctx, w.ID)
	require.NoError(t, err)
	second, err := store.Workflows.IncrementViews(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	downloads, err := store.Workflows.IncrementDownloads(ctx, w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, downloads)

	stats, err := store.Workflows.Stats(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, workflows.Stats{Views: 2, Downloads: 1}, stats)

	found, err := store.Workflows.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.Views)
	assert.EqualValues(t, 1, found.Downloads)

	_, err = store.Workflows.IncrementViews(ctx, "")
	assert.ErrorIs(t, err, workflows.ErrMissingID)
}

func TestWorkflowsConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	const n = 25
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := store.Workflows.IncrementViews(ctx, "42")
			return err
		})
	}
	require.NoError(t, g.Wait())

	stats, err := store.Workflows.Stats(ctx, "42")
	require.NoError(t, err)
	assert.EqualValues(t, n, stats.Views)
}

func TestWorkflowsMergeKeepsLargerCounter(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	require.NoError(t, store.Workflows.Replace(ctx, []workflows.Workflow{
		{ID: "1", Title: "seeded", Category: workflows.Dify, Views: 10, Downloads: 0},
	}))

	_, err := store.Workflows.IncrementViews(ctx, "1")
	require.NoError(t, err)
	_, err = store.Workflows.IncrementDownloads(ctx, "1")
	require.NoError(t, err)

	all, err := store.Workflows.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.EqualValues(t, 10, all[0].Views)
	assert.EqualValues(t, 1, all[0].Downloads)
	assert.Equal(t, []string{}, all[0].Images)
}

func TestWorkflowsDeleteBatchDropsCounters(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	a, err := store.Workflows.Create(ctx, workflows.CreateCommand{Title: "a", Description: "d", Category: workflows.N8N}, "")
	require.NoError(t, err)
	b, err := store.Workflows.Create(ctx, workflows.CreateCommand{Title: "b", Description: "d", Category: workflows.N8N}, "")
	require.NoError(t, err)

	_, err = store.Workflows.IncrementViews(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, store.Workflows.DeleteBatch(ctx, []catalog.ID{a.ID, b.ID}))

	all, err := store.Workflows.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	stats, err := store.Workflows.Stats(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestWorkflowsCorruptStats(t *testing.T) {
	ctx := context.Background()
	store, kv := open(t)

	require.NoError(t, store.Workflows.Replace(ctx, []workflows.Workflow{{ID: "7", Title: "t", Views: 3}}))
	require.NoError(t, kv.Put(ctx, local.StatsKey, []byte("{not json")))

	all, err := store.Workflows.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all[0].Views)

	views, err := store.Workflows.IncrementViews(ctx, "7")
	require.NoError(t, err)
	assert.EqualValues(t, 1, views)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)
	fav := store.Favorites

	require.NoError(t, fav.Add(ctx, favorites.Prompts, "alice", "3"))
	require.NoError(t, fav.Add(ctx, favorites.Prompts, "alice", "3"))
	require.NoError(t, fav.Add(ctx, favorites.Prompts, "alice", "1718-2"))
	require.NoError(t, fav.Add(ctx, favorites.Workflows, "alice", "9"))

	ids, err := fav.List(ctx, favorites.Prompts, "alice")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"3", "1718-2"}, ids)

	require.NoError(t, fav.Remove(ctx, favorites.Prompts, "alice", "3"))
	require.NoError(t, fav.Remove(ctx, favorites.Prompts, "alice", "3"))

	ids, err = fav.List(ctx, favorites.Prompts, "alice")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"1718-2"}, ids)

	ids, err = fav.List(ctx, favorites.Workflows, "alice")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"9"}, ids)

	ids, err = fav.List(ctx, favorites.Prompts, "bob")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{}, ids)
}

func TestFavoritesValidation(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)
	fav := store.Favorites

	_, err := fav.List(ctx, "bookmarks", "alice")
	assert.ErrorIs(t, err, favorites.ErrInvalidKind)

	_, err = fav.List(ctx, favorites.Prompts, "")
	assert.ErrorIs(t, err, favorites.ErrMissingOwner)

	assert.ErrorIs(t, fav.Add(ctx, favorites.Prompts, "", "1"), favorites.ErrMissingPrompt)
	assert.ErrorIs(t, fav.Remove(ctx, favorites.Workflows, "alice", ""), favorites.ErrMissingWorkflow)
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	store, _ := open(t)

	u, err := store.Session.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, store.Session.Save(ctx, users.User{ID: "7", Username: "ada", Role: users.Member}))

	u, err = store.Session.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, catalog.ID("7"), u.ID)
	assert.Equal(t, "ada", u.Username)

	require.NoError(t, store.Session.Clear(ctx))
	u, err = store.Session.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}
