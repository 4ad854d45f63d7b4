package prompts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/dbtest"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/pagination"
)

func newRepo(t *testing.T) prompts.System {
	return prompts.New(dbtest.Open(t), dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})
}

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	sys := newRepo(t)

	start := time.Now().Add(-time.Second)
	created, err := sys.Create(ctx, prompts.CreateCommand{
		Title:    "Summarize",
		Prompt:   "Summarize this:",
		Category: prompts.Writing,
		Tags:     []catalog.Tag{{Text: "short", Color: "green"}},
	}, "")
	require.NoError(t, err)

	assert.True(t, created.ID.IsNumeric())
	assert.False(t, created.CreatedAt.Before(start))
	assert.Equal(t, catalog.Beginner, created.Complexity)
	assert.Equal(t, prompts.TypeText, created.Type)
	assert.True(t, created.IsCustom)

	require.NoError(t, sys.Update(ctx, created.ID, prompts.UpdateCommand{}))
	unchanged, err := sys.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, unchanged.UpdatedAt)

	title := "Summarize briefly"
	require.NoError(t, sys.Update(ctx, created.ID, prompts.UpdateCommand{Title: &title}))
	updated, err := sys.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, created.Prompt, updated.Prompt)
	assert.Equal(t, created.Tags, updated.Tags)

	require.NoError(t, sys.DeleteBatch(ctx, nil))
	require.NoError(t, sys.DeleteBatch(ctx, []catalog.ID{created.ID}))

	_, err = sys.Find(ctx, created.ID)
	assert.ErrorIs(t, err, prompts.ErrNotFound)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	sys := newRepo(t)

	for _, title := range []string{"first", "second", "third"} {
		_, err := sys.Create(ctx, prompts.CreateCommand{Title: title, Prompt: "p", Category: prompts.Code}, "")
		require.NoError(t, err)
	}

	all, err := sys.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)

	search := "sec"
	page, err := sys.Search(ctx, pagination.PageRequest{Search: &search}, prompts.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	n, err := sys.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRepositoryWithoutDatabase(t *testing.T) {
	sys := prompts.New(nil, dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})

	_, err := sys.List(context.Background())
	if !errors.Is(err, database.ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}

	if err := sys.DeleteBatch(context.Background(), nil); err != nil {
		t.Errorf("empty DeleteBatch() should succeed without a database: %v", err)
	}
}

func TestRepositoryCreateUnknownOwner(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	sys := prompts.New(db, dbtest.Logger(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50})

	p, err := sys.Create(ctx, prompts.CreateCommand{Title: "T", Prompt: "p", Category: prompts.Custom}, "42")
	require.NoError(t, err)

	var owner *int64
	require.NoError(t, db.QueryRow(`SELECT user_id FROM prompts WHERE id = $1`, p.ID.String()).Scan(&owner))
	assert.Nil(t, owner)
}
