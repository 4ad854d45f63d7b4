package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/config"
)

// useLocal points every command at a fresh local store without a remote.
func useLocal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	prev := openApp
	openApp = func(ctx context.Context) (*app, error) {
		return newApp(config.ClientConfig{DataDir: dir, User: "tester"}, slog.New(slog.DiscardHandler))
	}
	t.Cleanup(func() { openApp = prev })
	return dir
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	flagJSON = false
	noColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), "gallery %v", args)
	return out.String()
}

func TestPromptsListSeedsLocalStore(t *testing.T) {
	useLocal(t)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "prompts", "list", "--json")), &items))
	assert.Len(t, items, 5)
}

func TestPromptsAddAndFavorite(t *testing.T) {
	useLocal(t)

	run(t, "prompts", "add", "--title", "Summarize", "--prompt", "Summarize this:", "--category", "writing", "--tag", "docs:green")

	var items []struct {
		ID    catalog.ID    `json:"id"`
		Title string        `json:"title"`
		Tags  []catalog.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(run(t, "prompts", "list", "--json")), &items))
	require.Len(t, items, 6)
	assert.Equal(t, "Summarize", items[0].Title)
	assert.Equal(t, []catalog.Tag{{Text: "docs", Color: "green"}}, items[0].Tags)

	run(t, "prompts", "fav", items[0].ID.String())
	out := run(t, "prompts", "list")
	assert.Contains(t, out, "★")
}

func TestWorkflowsViewCountsView(t *testing.T) {
	useLocal(t)

	stats := func() map[string]any {
		var s map[string]any
		require.NoError(t, json.Unmarshal([]byte(run(t, "workflows", "stats", "2", "--json")), &s))
		return s
	}

	before := stats()
	run(t, "workflows", "view", "2")
	after := stats()

	assert.Equal(t, before["views"].(float64)+1, after["views"])
	assert.Equal(t, before["downloads"], after["downloads"])
	assert.Equal(t, "localstorage", after["source"])
}

func TestWorkflowsImportAndDownload(t *testing.T) {
	useLocal(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "import.json")
	require.NoError(t, os.WriteFile(src, []byte(`[
		{"title": "Digest", "description": "Daily mail", "workflowJson": "{\"nodes\":[]}"},
		{"title": "", "description": "missing title"}
	]`), 0o644))
	run(t, "workflows", "import", src)

	var items []struct {
		ID       catalog.ID `json:"id"`
		Title    string     `json:"title"`
		Category string     `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(run(t, "workflows", "list", "--json")), &items))
	require.Len(t, items, 4)
	assert.Equal(t, "Digest", items[0].Title)
	assert.Equal(t, "other", items[0].Category)

	dst := filepath.Join(dir, "digest.json")
	run(t, "workflows", "download", items[0].ID.String(), "-o", dst)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[]}`, string(data))
}

func TestRemoteCommandsRequireRemote(t *testing.T) {
	useLocal(t)
	noColor = true
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"snapshot", "list"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvClientRemote)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []catalog.Tag
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"default color", []string{"go"}, []catalog.Tag{{Text: "go", Color: "blue"}}, false},
		{"explicit color", []string{"design:purple"}, []catalog.Tag{{Text: "design", Color: "purple"}}, false},
		{"empty text", []string{":green"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
