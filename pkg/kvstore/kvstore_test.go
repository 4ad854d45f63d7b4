package kvstore_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/gallery/pkg/kvstore"
)

func openStore(t *testing.T) *kvstore.Store {
	t.Helper()
	s, err := kvstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", []byte("one")))
	require.NoError(t, s.Put(ctx, "k", []byte("two")))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := kvstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, kvstore.PutJSON(ctx, s1, "workflow_stats_v1", map[string]int{"1": 3}))
	require.NoError(t, s1.Close())

	s2, err := kvstore.Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := kvstore.GetJSON[map[string]int](ctx, s2, "workflow_stats_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"1": 3}, got)

	keys, err := s2.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"workflow_stats_v1"}, keys)
}

func TestUpdateAbortLeavesValue(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Put(ctx, "k", []byte("keep")))

	boom := errors.New("boom")
	err := s.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestUpdateJSONConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	const n = 50
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := kvstore.UpdateJSON(ctx, s, "counter", func(v *map[string]int) error {
				if *v == nil {
					*v = map[string]int{}
				}
				(*v)["views"]++
				return nil
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, _, err := kvstore.GetJSON[map[string]int](ctx, s, "counter")
	require.NoError(t, err)
	assert.Equal(t, n, got["views"])
}

func TestUpdateJSONReplacesCorruptValue(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Put(ctx, "k", []byte("{not json")))

	got, err := kvstore.UpdateJSON(ctx, s, "k", func(v *[]string) error {
		*v = append(*v, strconv.Itoa(len(*v)))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, got)

	_, _, err = kvstore.GetJSON[[]string](ctx, s, "k")
	require.NoError(t, err)
}
