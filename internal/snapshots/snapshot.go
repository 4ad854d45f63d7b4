// Package snapshots exports the whole catalog as a JSON document to blob
// storage and serves previous exports back.
package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/formatting"
	"github.com/JaimeStill/gallery/pkg/storage"
)

// FormatVersion is written into every snapshot document.
const FormatVersion = 1

// KeyPrefix is the blob key prefix shared by all snapshots.
const KeyPrefix = "catalog/"

// Snapshot is the exported document.
type Snapshot struct {
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"createdAt"`
	Prompts   []prompts.Prompt     `json:"prompts"`
	Workflows []workflows.Workflow `json:"workflows"`
}

// Info describes a stored snapshot.
type Info struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	SizeText  string    `json:"sizeText"`
	Prompts   int       `json:"prompts"`
	Workflows int       `json:"workflows"`
	CreatedAt time.Time `json:"createdAt"`
}

type System interface {
	// Create reads both collections and uploads them as one document.
	Create(ctx context.Context) (*Info, error)
	// List returns stored snapshots, at most maxResults of them.
	List(ctx context.Context, maxResults int32) ([]storage.BlobInfo, error)
	// Open returns the stored document. The caller closes the body.
	Open(ctx context.Context, key string) (*storage.Blob, error)
	Handler() *Handler
}

type system struct {
	blobs       storage.System
	prompts     prompts.Store
	workflows   workflows.Store
	logger      *slog.Logger
	maxListSize int32
}

// New creates the snapshot system. A nil blob store yields a System whose
// operations fail with storage.ErrDisabled.
func New(
	blobs storage.System,
	p prompts.Store,
	w workflows.Store,
	logger *slog.Logger,
	maxListSize int32,
) System {
	return &system{
		blobs:       blobs,
		prompts:     p,
		workflows:   w,
		logger:      logger.With("system", "snapshots"),
		maxListSize: maxListSize,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.maxListSize)
}

func (s *system) Create(ctx context.Context) (*Info, error) {
	if s.blobs == nil {
		return nil, storage.ErrDisabled
	}

	snap := Snapshot{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Prompts, err = s.prompts.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Workflows, err = s.workflows.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := Key(snap.CreatedAt, uuid.New())
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	info := &Info{
		Key:       key,
		Size:      int64(len(data)),
		SizeText:  formatting.FormatBytes(int64(len(data)), 1),
		Prompts:   len(snap.Prompts),
		Workflows: len(snap.Workflows),
		CreatedAt: snap.CreatedAt,
	}

	s.logger.Info("snapshot created",
		"key", info.Key,
		"size", info.SizeText,
		"prompts", info.Prompts,
		"workflows", info.Workflows,
	)
	return info, nil
}

func (s *system) List(ctx context.Context, maxResults int32) ([]storage.BlobInfo, error) {
	if s.blobs == nil {
		return nil, storage.ErrDisabled
	}
	return s.blobs.List(ctx, KeyPrefix, maxResults)
}

func (s *system) Open(ctx context.Context, key string) (*storage.Blob, error) {
	if s.blobs == nil {
		return nil, storage.ErrDisabled
	}
	return s.blobs.Download(ctx, key)
}

// Key names a snapshot so keys sort by creation time.
func Key(at time.Time, id uuid.UUID) string {
	return path.Join(KeyPrefix, fmt.Sprintf("%s-%s.json", at.UTC().Format("20060102T150405Z"), id))
}
