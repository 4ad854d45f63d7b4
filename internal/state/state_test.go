package state_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/local"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/state"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

var errDown = errors.New("connection refused")

func openLocal(t *testing.T) *local.Store {
	t.Helper()
	kv, err := kvstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return local.New(kv)
}

func options() state.Options {
	return state.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func seedWorkflows(now time.Time) []workflows.Workflow {
	return []workflows.Workflow{
		{ID: "1", Title: "Seeded", Category: workflows.N8N, Images: []string{}, Views: 5, CreatedAt: now},
	}
}

// downWorkflows is a remote that is unreachable.
type downWorkflows struct{}

func (downWorkflows) List(context.Context) ([]workflows.Workflow, error) { return nil, errDown }
func (downWorkflows) Find(context.Context, catalog.ID) (*workflows.Workflow, error) {
	return nil, errDown
}
func (downWorkflows) Create(context.Context, workflows.CreateCommand, string) (*workflows.Workflow, error) {
	return nil, errDown
}
func (downWorkflows) Update(context.Context, catalog.ID, workflows.UpdateCommand) error {
	return errDown
}
func (downWorkflows) DeleteBatch(context.Context, []catalog.ID) error { return errDown }
func (downWorkflows) IncrementViews(context.Context, catalog.ID) (int64, error) {
	return 0, errDown
}
func (downWorkflows) IncrementDownloads(context.Context, catalog.ID) (int64, error) {
	return 0, errDown
}
func (downWorkflows) Stats(context.Context, catalog.ID) (workflows.Stats, error) {
	return workflows.Stats{}, errDown
}

// zeroCounter is a reachable remote whose increments report zero.
type zeroCounter struct{ *local.Workflows }

func (zeroCounter) IncrementViews(context.Context, catalog.ID) (int64, error)     { return 0, nil }
func (zeroCounter) IncrementDownloads(context.Context, catalog.ID) (int64, error) { return 0, nil }

type downFavorites struct{}

func (downFavorites) List(context.Context, favorites.Kind, string) ([]catalog.ID, error) {
	return nil, errDown
}
func (downFavorites) Add(context.Context, favorites.Kind, string, catalog.ID) error    { return errDown }
func (downFavorites) Remove(context.Context, favorites.Kind, string, catalog.ID) error { return errDown }

func TestMergePolicy(t *testing.T) {
	tests := []struct {
		policy        state.MergePolicy
		remote, local int64
		want          int64
	}{
		{state.MaxWins, 3, 7, 7},
		{state.MaxWins, 9, 7, 9},
		{state.RemoteWins, 3, 7, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.Merge(tt.remote, tt.local), "%s(%d, %d)", tt.policy, tt.remote, tt.local)
	}

	p, err := state.ParseMergePolicy("")
	require.NoError(t, err)
	assert.Equal(t, state.MaxWins, p)

	_, err = state.ParseMergePolicy("newest")
	assert.Error(t, err)
}

func TestWorkflowsLoadSeedsEmptyLocalStore(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)

	s := state.NewWorkflows(nil, store.Workflows, seedWorkflows, options())
	require.NoError(t, s.Load(ctx))

	assert.True(t, s.Loaded())
	assert.Equal(t, catalog.SourceLocal, s.Source())
	require.Len(t, s.Items(), 1)

	persisted, err := store.Workflows.List(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestWorkflowsRemoteDownFallsBack(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)

	s := state.NewWorkflows(downWorkflows{}, store.Workflows, seedWorkflows, options())
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, catalog.SourceLocal, s.Source())

	w, err := s.Add(ctx, workflows.CreateCommand{Title: "T", Description: "D", Category: workflows.N8N}, "")
	require.NoError(t, err)
	assert.False(t, w.ID.IsNumeric())
	assert.Equal(t, catalog.Beginner, w.Complexity)
	assert.Equal(t, []string{}, w.Images)

	reloaded := state.NewWorkflows(nil, store.Workflows, nil, options())
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.Items(), 2)
	assert.Equal(t, w.ID, reloaded.Items()[0].ID)

	title := "Renamed"
	require.NoError(t, s.Update(ctx, w.ID, workflows.UpdateCommand{Title: &title}))
	found, err := s.Find(w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)

	require.NoError(t, s.Update(ctx, w.ID, workflows.UpdateCommand{}))
	assert.ErrorIs(t, s.Update(ctx, "nope", workflows.UpdateCommand{Title: &title}), workflows.ErrNotFound)

	require.NoError(t, s.Delete(ctx, nil))
	require.NoError(t, s.Delete(ctx, []catalog.ID{w.ID, "1"}))
	assert.Empty(t, s.Items())
}

func TestWorkflowsAddValidates(t *testing.T) {
	s := state.NewWorkflows(nil, openLocal(t).Workflows, nil, options())

	_, err := s.Add(context.Background(), workflows.CreateCommand{Title: "T"}, "")
	assert.Error(t, err)
	assert.Empty(t, s.Items())
}

func TestWorkflowsRemoteLoadMergesLocalStats(t *testing.T) {
	ctx := context.Background()

	remoteStore := openLocal(t)
	require.NoError(t, remoteStore.Workflows.Replace(ctx, []workflows.Workflow{
		{ID: "5", Title: "Remote", Category: workflows.Dify, Views: 2, Downloads: 9},
	}))

	localStore := openLocal(t)
	for range 4 {
		_, err := localStore.Workflows.IncrementViews(ctx, "5")
		require.NoError(t, err)
	}

	maxWins := state.NewWorkflows(remoteStore.Workflows, localStore.Workflows, nil, options())
	require.NoError(t, maxWins.Load(ctx))
	assert.Equal(t, catalog.SourceServer, maxWins.Source())
	got := maxWins.Items()[0]
	assert.EqualValues(t, 4, got.Views)
	assert.EqualValues(t, 9, got.Downloads)

	opts := options()
	opts.Policy = state.RemoteWins
	remoteWins := state.NewWorkflows(remoteStore.Workflows, localStore.Workflows, nil, opts)
	require.NoError(t, remoteWins.Load(ctx))
	assert.EqualValues(t, 2, remoteWins.Items()[0].Views)
}

func TestWorkflowsIncrement(t *testing.T) {
	ctx := context.Background()

	remoteStore := openLocal(t)
	require.NoError(t, remoteStore.Workflows.Replace(ctx, []workflows.Workflow{{ID: "5", Title: "R", Views: 10}}))
	localStore := openLocal(t)

	t.Run("positive remote count is accepted", func(t *testing.T) {
		s := state.NewWorkflows(remoteStore.Workflows, localStore.Workflows, nil, options())
		require.NoError(t, s.Load(ctx))

		first, err := s.IncrementViews(ctx, "5")
		require.NoError(t, err)
		second, err := s.IncrementViews(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, first+1, second)

		item, err := s.Find("5")
		require.NoError(t, err)
		assert.Equal(t, second, item.Views)

		st, err := localStore.Workflows.Stats(ctx, "5")
		require.NoError(t, err)
		assert.Zero(t, st.Views)
	})

	t.Run("zero remote count falls back to local", func(t *testing.T) {
		s := state.NewWorkflows(zeroCounter{remoteStore.Workflows}, localStore.Workflows, nil, options())
		require.NoError(t, s.Load(ctx))
		before, err := s.Find("5")
		require.NoError(t, err)

		n, err := s.IncrementDownloads(ctx, "5")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		after, err := s.Find("5")
		require.NoError(t, err)
		assert.Equal(t, before.Downloads+1, after.Downloads)
	})

	t.Run("missing id", func(t *testing.T) {
		s := state.NewWorkflows(nil, localStore.Workflows, nil, options())
		_, err := s.IncrementViews(ctx, "")
		assert.ErrorIs(t, err, workflows.ErrMissingID)
	})
}

func TestWorkflowsConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)

	s := state.NewWorkflows(nil, store.Workflows, seedWorkflows, options())
	require.NoError(t, s.Load(ctx))

	const n = 20
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := s.IncrementViews(ctx, "1")
			return err
		})
	}
	require.NoError(t, g.Wait())

	item, err := s.Find("1")
	require.NoError(t, err)
	assert.EqualValues(t, 5+n, item.Views)

	st, err := store.Workflows.Stats(ctx, "1")
	require.NoError(t, err)
	assert.EqualValues(t, n, st.Views)

	reloaded := state.NewWorkflows(nil, store.Workflows, seedWorkflows, options())
	require.NoError(t, reloaded.Load(ctx))
	item, err = reloaded.Find("1")
	require.NoError(t, err)
	assert.EqualValues(t, 5+n, item.Views)
}

func TestWorkflowsDownload(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)

	s := state.NewWorkflows(nil, store.Workflows, nil, options())
	require.NoError(t, s.Load(ctx))

	empty, err := s.Add(ctx, workflows.CreateCommand{Title: "Empty", Description: "D", Category: workflows.Other}, "")
	require.NoError(t, err)
	_, _, err = s.Download(ctx, empty.ID)
	assert.ErrorIs(t, err, workflows.ErrNoPayload)

	w, err := s.Add(ctx, workflows.CreateCommand{
		Title: "My Flow!", Description: "D", Category: workflows.N8N, WorkflowJSON: `{"nodes":[]}`,
	}, "")
	require.NoError(t, err)

	data, name, err := s.Download(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, string(data))
	assert.Equal(t, "my-flow.json", name)

	item, err := s.Find(w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, item.Downloads)
}

func TestWorkflowsImportLocal(t *testing.T) {
	ctx := context.Background()
	s := state.NewWorkflows(nil, openLocal(t).Workflows, nil, options())
	require.NoError(t, s.Load(ctx))

	n, err := s.Import(ctx, []workflows.CreateCommand{
		{Title: "A", Description: "d"},
		{Title: "", Description: "d"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, workflows.Other, items[0].Category)
	assert.True(t, items[0].IsCustom)

	_, err = s.Import(ctx, nil, "")
	assert.ErrorIs(t, err, workflows.ErrMissingBatch)
}

func TestPromptsLocalLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)

	seed := func(now time.Time) []prompts.Prompt {
		return []prompts.Prompt{{ID: "1", Title: "Seed", Prompt: "p", Category: prompts.Code, CreatedAt: now}}
	}

	s := state.NewPrompts(nil, store.Prompts, seed, options())
	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Items(), 1)

	p, err := s.Add(ctx, prompts.CreateCommand{Title: "T", Prompt: "P", Category: prompts.Writing}, "")
	require.NoError(t, err)
	assert.True(t, p.IsCustom)

	desc := "short"
	require.NoError(t, s.Update(ctx, p.ID, prompts.UpdateCommand{Desc: &desc}))

	persisted, err := store.Prompts.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "short", persisted.Desc)

	require.NoError(t, s.Delete(ctx, []catalog.ID{"1"}))
	all, err := store.Prompts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.ID, all[0].ID)
}

func TestPromptsRemoteFirst(t *testing.T) {
	ctx := context.Background()
	remoteStore := openLocal(t)
	localStore := openLocal(t)

	s := state.NewPrompts(remoteStore.Prompts, localStore.Prompts, nil, options())
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, catalog.SourceServer, s.Source())

	_, err := s.Add(ctx, prompts.CreateCommand{Title: "T", Prompt: "P", Category: prompts.Code}, "")
	require.NoError(t, err)

	remote, err := remoteStore.Prompts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remote, 1)

	local, err := localStore.Prompts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, local)
}

func TestFavoritesToggle(t *testing.T) {
	ctx := context.Background()
	store := openLocal(t)
	owner := state.Owner{ID: "7", Username: "alice"}

	f := state.NewFavorites(favorites.Workflows, owner, downFavorites{}, store.Favorites, options())
	require.NoError(t, f.Load(ctx))
	assert.Zero(t, f.Count())

	added, err := f.Toggle(ctx, "3")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, f.Has("3"))

	ids, err := store.Favorites.List(ctx, favorites.Workflows, "alice")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"3"}, ids)

	added, err = f.Toggle(ctx, "3")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, f.IDs())
}

func TestFavoritesRemoteKeyedByID(t *testing.T) {
	ctx := context.Background()
	remoteStore := openLocal(t)
	localStore := openLocal(t)

	require.NoError(t, remoteStore.Favorites.Add(ctx, favorites.Prompts, "7", "11"))

	f := state.NewFavorites(favorites.Prompts, state.Owner{ID: "7", Username: "alice"}, remoteStore.Favorites, localStore.Favorites, options())
	require.NoError(t, f.Load(ctx))
	assert.Equal(t, []catalog.ID{"11"}, f.IDs())

	_, err := f.Toggle(ctx, "12")
	require.NoError(t, err)

	remote, err := remoteStore.Favorites.List(ctx, favorites.Prompts, "7")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"11", "12"}, remote)

	local, err := localStore.Favorites.List(ctx, favorites.Prompts, "alice")
	require.NoError(t, err)
	assert.Empty(t, local)
}

func TestFavoritesWithoutOwner(t *testing.T) {
	f := state.NewFavorites(favorites.Prompts, state.Owner{}, nil, openLocal(t).Favorites, options())
	require.NoError(t, f.Load(context.Background()))
	assert.Empty(t, f.IDs())
}
