package local

import (
	"context"
	"fmt"

	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/pkg/kvstore"
)

// Session remembers the account signed in on this machine.
type Session struct {
	kv *kvstore.Store
}

// Current returns the signed-in user, or nil when nobody is signed in.
func (s *Session) Current(ctx context.Context) (*users.User, error) {
	u, ok, err := kvstore.GetJSON[users.User](ctx, s.kv, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok || u.Username == "" {
		return nil, nil
	}
	return &u, nil
}

func (s *Session) Save(ctx context.Context, u users.User) error {
	return kvstore.PutJSON(ctx, s.kv, SessionKey, u)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, SessionKey)
}
