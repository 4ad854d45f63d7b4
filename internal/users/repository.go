package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/query"
	"github.com/JaimeStill/gallery/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("username", "Username").
	Project("role", "Role").
	Project("avatar", "Avatar").
	Project("created_at", "CreatedAt").
	Project("password_hash", "PasswordHash")

type account struct {
	User
	hash string
}

func scanAccount(s repository.Scanner) (account, error) {
	var (
		a      account
		avatar *string
	)
	err := s.Scan(&a.ID, &a.Username, &a.Role, &avatar, &a.CreatedAt, &a.hash)
	if avatar != nil {
		a.Avatar = *avatar
	}
	return a, err
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "users"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, id catalog.ID) (*User, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}
	if !id.IsNumeric() {
		return nil, ErrNotFound
	}

	a, err := r.one(ctx, "ID", id)
	if err != nil {
		return nil, err
	}
	return &a.User, nil
}

func (r *repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	a, err := r.one(ctx, "Username", username)
	if err != nil {
		return nil, err
	}
	return &a.User, nil
}

func (r *repo) one(ctx context.Context, field string, value any) (account, error) {
	q, args := query.NewBuilder(projection).BuildSingle(field, value)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAccount)
	if err != nil {
		return account{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return a, nil
}

func (r *repo) Create(ctx context.Context, username, password string, role Role) (*User, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO public.users AS u (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING %s`, projection.Columns())

	a, err := repository.QueryOne(ctx, r.db, q, []any{username, hash, role}, scanAccount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user created", "id", a.ID, "username", a.Username, "role", a.Role)
	return &a.User, nil
}

func (r *repo) Verify(ctx context.Context, username, password string) (*User, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	a, err := r.one(ctx, "Username", username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(a.hash, password) {
		r.logger.Warn("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}
	return &a.User, nil
}

func (r *repo) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if _, err := r.Create(ctx, username, password, Admin); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
