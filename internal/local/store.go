// Package local persists the catalog on the client machine. Every collection
// lives under a fixed key of a SQLite key/value table as one JSON document,
// so data written by earlier releases stays readable.
package local

import (
	"fmt"
	"time"

	"github.com/JaimeStill/gallery/pkg/kvstore"
)

// Fixed document keys.
const (
	PromptsKey           = "prompt_master_db_v1"
	WorkflowsKey         = "workflow_master_db_v1"
	StatsKey             = "workflow_stats_v1"
	PromptFavoritesKey   = "user_favorites_v1"
	WorkflowFavoritesKey = "workflow_favorites_v1"
	SessionKey           = "current_user_v1"
)

// Store groups the local collections over one key/value database.
type Store struct {
	kv        *kvstore.Store
	Prompts   *Prompts
	Workflows *Workflows
	Favorites *Favorites
	Session   *Session
}

// Open opens the local database in dataDir (":memory:" for tests).
func Open(dataDir string) (*Store, error) {
	kv, err := kvstore.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return New(kv), nil
}

func New(kv *kvstore.Store) *Store {
	clock := func() time.Time { return time.Now().UTC() }
	return &Store{
		kv:        kv,
		Prompts:   &Prompts{kv: kv, now: clock},
		Workflows: &Workflows{kv: kv, now: clock},
		Favorites: &Favorites{kv: kv},
		Session:   &Session{kv: kv},
	}
}

func (s *Store) Close() error {
	return s.kv.Close()
}
