package snapshots_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/snapshots"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/lifecycle"
	"github.com/JaimeStill/gallery/pkg/routes"
	"github.com/JaimeStill/gallery/pkg/storage"
)

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (m *memBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (m *memBlobs) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memBlobs) Download(_ context.Context, key string) (*storage.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "application/json",
		ContentLength: int64(len(data)),
	}, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memBlobs) List(_ context.Context, prefix string, _ int32) ([]storage.BlobInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.BlobInfo
	for k, v := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.BlobInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

type promptList struct {
	prompts.Store
	items []prompts.Prompt
	err   error
}

func (p promptList) List(context.Context) ([]prompts.Prompt, error) { return p.items, p.err }

type workflowList struct {
	workflows.Store
	items []workflows.Workflow
}

func (w workflowList) List(context.Context) ([]workflows.Workflow, error) { return w.items, nil }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(blobs storage.System, p prompts.Store) snapshots.System {
	w := workflowList{items: []workflows.Workflow{{ID: "5", Title: "Digest", Images: []string{}}}}
	return snapshots.New(blobs, p, w, discard(), 50)
}

func TestCreateAndOpen(t *testing.T) {
	blobs := newMemBlobs()
	sys := newSystem(blobs, promptList{items: []prompts.Prompt{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}})
	ctx := context.Background()

	info, err := sys.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if info.Prompts != 2 || info.Workflows != 1 {
		t.Errorf("counts = %d prompts, %d workflows", info.Prompts, info.Workflows)
	}
	if !strings.HasPrefix(info.Key, snapshots.KeyPrefix) || !strings.HasSuffix(info.Key, ".json") {
		t.Errorf("key = %s", info.Key)
	}

	blob, err := sys.Open(ctx, info.Key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer blob.Body.Close()

	var snap snapshots.Snapshot
	if err := json.NewDecoder(blob.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != snapshots.FormatVersion || len(snap.Prompts) != 2 || snap.Workflows[0].Title != "Digest" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestCreateReadFailure(t *testing.T) {
	blobs := newMemBlobs()
	sys := newSystem(blobs, promptList{err: errors.New("database unavailable")})

	if _, err := sys.Create(context.Background()); err == nil {
		t.Fatal("expected error when a collection cannot be read")
	}
	if len(blobs.blobs) != 0 {
		t.Error("nothing should be uploaded after a failed read")
	}
}

func TestKeySortsByTime(t *testing.T) {
	id := uuid.MustParse("6f1c2a52-8d53-4c1e-9a43-6a0d4e6f1b2c")
	early := snapshots.Key(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), id)
	late := snapshots.Key(time.Date(2025, 11, 2, 3, 4, 5, 0, time.UTC), id)

	if early != "catalog/20250102T030405Z-6f1c2a52-8d53-4c1e-9a43-6a0d4e6f1b2c.json" {
		t.Errorf("key = %s", early)
	}
	if early >= late {
		t.Error("keys must sort by creation time")
	}
}

func TestDisabled(t *testing.T) {
	sys := newSystem(nil, promptList{})
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	for _, method := range []string{"GET", "POST"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, "/snapshots", nil))
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "blob storage not enabled") {
			t.Errorf("%s: status = %d, body %s", method, rec.Code, rec.Body.String())
		}
	}
}

func TestHandler(t *testing.T) {
	blobs := newMemBlobs()
	sys := newSystem(blobs, promptList{items: []prompts.Prompt{{ID: "1"}}})
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/snapshots", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Snapshot snapshots.Info `json:"snapshot"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshots", nil))
	if !strings.Contains(rec.Body.String(), created.Snapshot.Key) {
		t.Errorf("list does not include %s: %s", created.Snapshot.Key, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshots/"+created.Snapshot.Key, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), ".json") {
		t.Errorf("download: status = %d, headers %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshots/catalog/missing.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/snapshots?max_results=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad max_results: status = %d, want 400", rec.Code)
	}
}
