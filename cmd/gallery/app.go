package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/client"
	"github.com/JaimeStill/gallery/internal/config"
	"github.com/JaimeStill/gallery/internal/favorites"
	"github.com/JaimeStill/gallery/internal/local"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/seed"
	"github.com/JaimeStill/gallery/internal/state"
	"github.com/JaimeStill/gallery/internal/workflows"
)

// app is the client wiring shared by every command.
type app struct {
	cfg    config.ClientConfig
	logger *slog.Logger
	store  *local.Store
	remote *client.Client
	opts   state.Options
	owner  state.Owner

	prompts   *state.Prompts
	workflows *state.Workflows
}

// openApp is a variable so tests can substitute their own wiring.
var openApp = func(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlags(&cfg.Client)

	a, err := newApp(cfg.Client, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		return nil, err
	}
	if err := a.restoreSession(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func applyFlags(c *config.ClientConfig) {
	if flagRemote != "" {
		c.Remote = flagRemote
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagUser != "" {
		c.User = flagUser
	}
	if flagPolicy != "" {
		c.MergePolicy = flagPolicy
	}
}

func newApp(cfg config.ClientConfig, logger *slog.Logger) (*app, error) {
	policy, err := state.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, err
	}

	store, err := local.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	c, err := seed.Load()
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		opts:   state.Options{Policy: policy, Logger: logger},
		owner:  state.Owner{ID: catalog.ID(flagUserID), Username: cfg.User},
	}

	var (
		remotePrompts   prompts.Store
		remoteWorkflows workflows.Store
	)
	if cfg.Remote != "" {
		timeout := cfg.TimeoutDuration()
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		a.remote = client.New(cfg.Remote, timeout)
		remotePrompts = a.remote.Prompts
		remoteWorkflows = a.remote.Workflows
	}

	a.prompts = state.NewPrompts(remotePrompts, store.Prompts, c.LocalPrompts, a.opts)
	a.workflows = state.NewWorkflows(remoteWorkflows, store.Workflows, c.LocalWorkflows, a.opts)
	return a, nil
}

// restoreSession fills the owner from the saved login unless flags or
// configuration already name one.
func (a *app) restoreSession(ctx context.Context) error {
	if a.owner.ID != "" || a.owner.Username != "" {
		return nil
	}
	u, err := a.store.Session.Current(ctx)
	if err != nil || u == nil {
		return err
	}
	a.owner = state.Owner{ID: u.ID, Username: u.Username}
	return nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// favorites returns a loaded favorites container for kind.
func (a *app) favorites(ctx context.Context, kind favorites.Kind) (*state.Favorites, error) {
	var remote favorites.Store
	if a.remote != nil {
		remote = a.remote.Favorites
	}

	f := state.NewFavorites(kind, a.owner, remote, a.store.Favorites, a.opts)
	if err := f.Load(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// requireRemote fails commands that only make sense against a server.
func (a *app) requireRemote() (*client.Client, error) {
	if a.remote == nil {
		return nil, fmt.Errorf("no remote configured: pass --remote or set %s", config.EnvClientRemote)
	}
	return a.remote, nil
}

// withApp opens the app, runs fn and closes it.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
