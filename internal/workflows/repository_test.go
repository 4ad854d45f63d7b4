package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/dbtest"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/pagination"
)

func newRepo(t *testing.T) (workflows.System, func(query string, args ...any)) {
	db := dbtest.Open(t)
	exec := func(query string, args ...any) {
		t.Helper()
		_, err := db.Exec(query, args...)
		require.NoError(t, err)
	}
	return workflows.New(db, dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50}), exec
}

func TestRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	sys, exec := newRepo(t)

	// counters recorded against a future id must not leak into the new row
	exec("INSERT INTO workflow_stats (workflow_id, views, downloads) VALUES ('1', 9, 9)")

	start := time.Now().Add(-time.Second)
	w, err := sys.Create(ctx, workflows.CreateCommand{
		Title:       "T",
		Description: "D",
		Category:    workflows.N8N,
		Images:      []string{"c.png", "a.png", "b.png"},
		Author:      &workflows.Author{Name: "admin", IsAdmin: true},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, catalog.ID("1"), w.ID)
	assert.False(t, w.CreatedAt.Before(start))
	assert.Equal(t, catalog.Beginner, w.Complexity)
	assert.Equal(t, []string{"c.png", "a.png", "b.png"}, w.Images)
	assert.Zero(t, w.Views)
	assert.Zero(t, w.Downloads)
	assert.Equal(t, &workflows.Author{Name: "admin", IsAdmin: true}, w.Author)
}

func TestRepositoryCorruptImages(t *testing.T) {
	ctx := context.Background()
	sys, exec := newRepo(t)

	w, err := sys.Create(ctx, workflows.CreateCommand{Title: "T", Description: "D", Category: workflows.Dify}, "")
	require.NoError(t, err)

	exec(`UPDATE workflows SET images = '{"not":"a list"}' WHERE id = $1`, w.ID)

	found, err := sys.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, found.Images)
}

func TestRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	sys, _ := newRepo(t)

	w, err := sys.Create(ctx, workflows.CreateCommand{
		Title:       "T",
		Description: "D",
		Category:    workflows.ComfyUI,
		Images:      []string{"a.png"},
	}, "")
	require.NoError(t, err)

	require.NoError(t, sys.Update(ctx, w.ID, workflows.UpdateCommand{}))

	detail := "now with upscaling"
	require.NoError(t, sys.Update(ctx, w.ID, workflows.UpdateCommand{
		Detail: &detail,
		Images: ptr([]string{}),
	}))

	found, err := sys.Find(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, detail, found.Detail)
	assert.Equal(t, []string{}, found.Images)
	assert.Equal(t, w.Title, found.Title)
	assert.False(t, found.UpdatedAt.Before(w.UpdatedAt))
}

func TestRepositoryCounters(t *testing.T) {
	ctx := context.Background()
	sys, _ := newRepo(t)

	stats, err := sys.Stats(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, workflows.Stats{}, stats)

	first, err := sys.IncrementViews(ctx, "5")
	require.NoError(t, err)
	second, err := sys.IncrementViews(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, first+1, second)

	const n = 40
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := sys.IncrementDownloads(ctx, "5")
			return err
		})
	}
	require.NoError(t, g.Wait())

	stats, err = sys.Stats(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, workflows.Stats{Views: 2, Downloads: n}, stats)

	// local-style ids have counters too
	views, err := sys.IncrementViews(ctx, "1700000000000-17")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
}

func TestRepositoryCountersJoinedOnRead(t *testing.T) {
	ctx := context.Background()
	sys, _ := newRepo(t)

	w, err := sys.Create(ctx, workflows.CreateCommand{Title: "T", Description: "D", Category: workflows.Other}, "")
	require.NoError(t, err)

	_, err = workflows.Increment(ctx, sys, w.ID, workflows.View)
	require.NoError(t, err)

	all, err := sys.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].Views)

	sort := pagination.SortFields{{Field: "views", Descending: true}}
	page, err := sys.Search(ctx, pagination.PageRequest{Sort: sort}, workflows.Filters{Category: ptr(workflows.Other)})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestRepositoryDeleteBatch(t *testing.T) {
	ctx := context.Background()
	sys, _ := newRepo(t)

	var ids []catalog.ID
	for _, title := range []string{"one", "two", "three"} {
		w, err := sys.Create(ctx, workflows.CreateCommand{Title: title, Description: "d", Category: workflows.N8N}, "")
		require.NoError(t, err)
		ids = append(ids, w.ID)
	}

	_, err := sys.IncrementViews(ctx, ids[0])
	require.NoError(t, err)

	require.NoError(t, sys.DeleteBatch(ctx, []catalog.ID{}))
	require.NoError(t, sys.DeleteBatch(ctx, []catalog.ID{ids[0], ids[1], "not-a-number"}))

	all, err := sys.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ids[2], all[0].ID)

	stats, err := sys.Stats(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, workflows.Stats{}, stats)
}

func TestRepositoryWithoutDatabase(t *testing.T) {
	sys := workflows.New(nil, dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})
	ctx := context.Background()

	if _, err := sys.IncrementViews(ctx, "5"); !errors.Is(err, database.ErrUnavailable) {
		t.Errorf("IncrementViews() error = %v, want ErrUnavailable", err)
	}
	if _, err := sys.Stats(ctx, ""); !errors.Is(err, workflows.ErrMissingID) {
		t.Errorf("Stats(\"\") error = %v, want ErrMissingID", err)
	}
	if err := sys.Update(ctx, "1", workflows.UpdateCommand{}); err != nil {
		t.Errorf("empty Update() should succeed without a database: %v", err)
	}
}

func TestRepositoryCreateUnknownOwner(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sys := workflows.New(db, dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})

	_, err := db.Exec(`INSERT INTO users (username, password_hash) VALUES ('ann', 'x')`)
	require.NoError(t, err)

	tests := []struct {
		name  string
		owner string
		want  any
	}{
		{"missing account stored as NULL", "999", nil},
		{"existing account kept", "1", int64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := sys.Create(ctx, workflows.CreateCommand{Title: tt.name, Description: "D", Category: workflows.N8N}, tt.owner)
			require.NoError(t, err)

			var got any
			require.NoError(t, db.QueryRow(`SELECT user_id FROM workflows WHERE id = $1`, w.ID.String()).Scan(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
