// Package state holds the client's in-memory view of the catalog. Every
// container reads and writes the remote server first and falls back to the
// local store when the remote is absent or fails.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/workflows"
)

var errNoRemote = errors.New("remote not configured")

// MergePolicy decides how a remote counter is reconciled with the local one.
type MergePolicy string

const (
	// MaxWins keeps the larger of the two values. Counts recorded on both
	// sides are not summed, so the result can undercount.
	MaxWins MergePolicy = "max"
	// RemoteWins takes the server value whenever one is available.
	RemoteWins MergePolicy = "remote"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch p := MergePolicy(s); p {
	case MaxWins, RemoteWins:
		return p, nil
	case "":
		return MaxWins, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// Merge reconciles a remote and a local counter value.
func (p MergePolicy) Merge(remote, local int64) int64 {
	if p == RemoteWins {
		return remote
	}
	return max(remote, local)
}

// LocalPrompts is the on-disk prompt store. Replace persists the whole
// in-memory collection after a fallback mutation.
type LocalPrompts interface {
	prompts.Store
	Replace(ctx context.Context, items []prompts.Prompt) error
}

type LocalWorkflows interface {
	workflows.Store
	Replace(ctx context.Context, items []workflows.Workflow) error
}

// Options configures the containers.
type Options struct {
	Policy MergePolicy
	Logger *slog.Logger
	// Now stamps items created locally. Defaults to time.Now in UTC.
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.Policy == "" {
		o.Policy = MaxWins
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
}
