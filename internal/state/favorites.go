package state

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/favorites"
)

// Owner identifies whose favorites a container holds. The server keys
// favorites by ID when one is known; the local store always uses Username.
type Owner struct {
	ID       catalog.ID `json:"id,omitempty"`
	Username string     `json:"username,omitempty"`
}

func (o Owner) remoteKey() string {
	if o.ID != "" {
		return o.ID.String()
	}
	return o.Username
}

// Favorites holds one owner's favorites of one kind.
type Favorites struct {
	mu    sync.RWMutex
	ids   []catalog.ID
	kind  favorites.Kind
	owner Owner

	remote favorites.Store
	local  favorites.Store
	logger *slog.Logger
}

func NewFavorites(kind favorites.Kind, owner Owner, remote, local favorites.Store, opts Options) *Favorites {
	opts.defaults()
	return &Favorites{
		kind:   kind,
		owner:  owner,
		remote: remote,
		local:  local,
		logger: opts.Logger.With("state", "favorites", "kind", kind),
	}
}

func (f *Favorites) Load(ctx context.Context) error {
	if f.owner.Username == "" && f.owner.ID == "" {
		f.setIDs([]catalog.ID{})
		return nil
	}

	if f.remote != nil {
		ids, err := f.remote.List(ctx, f.kind, f.owner.remoteKey())
		if err == nil {
			f.setIDs(ids)
			return nil
		}
		f.logger.Warn("remote load failed, using local store", "error", err)
	}

	ids, err := f.local.List(ctx, f.kind, f.owner.Username)
	if err != nil {
		return fmt.Errorf("load local favorites: %w", err)
	}
	f.setIDs(ids)
	return nil
}

func (f *Favorites) IDs() []catalog.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.ids)
}

func (f *Favorites) Has(id catalog.ID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Contains(f.ids, id)
}

func (f *Favorites) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Toggle adds id when absent and removes it otherwise. It reports whether id
// is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, id catalog.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	present := slices.Contains(f.ids, id)

	remoteOp, localOp := f.remoteAdd, f.localAdd
	if present {
		remoteOp, localOp = f.remoteRemove, f.localRemove
	}

	if err := remoteOp(ctx, id); err != nil {
		if f.remote != nil {
			f.logger.Warn("remote toggle failed, using local store", "id", id, "error", err)
		}
		if err := localOp(ctx, id); err != nil {
			return present, err
		}
	}

	if present {
		f.ids = slices.DeleteFunc(f.ids, func(v catalog.ID) bool { return v == id })
	} else {
		f.ids = append(f.ids, id)
	}
	return !present, nil
}

func (f *Favorites) remoteAdd(ctx context.Context, id catalog.ID) error {
	if f.remote == nil {
		return errNoRemote
	}
	return f.remote.Add(ctx, f.kind, f.owner.remoteKey(), id)
}

func (f *Favorites) remoteRemove(ctx context.Context, id catalog.ID) error {
	if f.remote == nil {
		return errNoRemote
	}
	return f.remote.Remove(ctx, f.kind, f.owner.remoteKey(), id)
}

func (f *Favorites) localAdd(ctx context.Context, id catalog.ID) error {
	return f.local.Add(ctx, f.kind, f.owner.Username, id)
}

func (f *Favorites) localRemove(ctx context.Context, id catalog.ID) error {
	return f.local.Remove(ctx, f.kind, f.owner.Username, id)
}

func (f *Favorites) setIDs(ids []catalog.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ids == nil {
		ids = []catalog.ID{}
	}
	f.ids = ids
}
