package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/repository"
)

type tables struct {
	favorites string
	entities  string
}

var byKind = map[Kind]tables{
	Prompts:   {favorites: "favorites", entities: "prompts"},
	Workflows: {favorites: "workflow_favorites", entities: "workflows"},
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "favorites"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, kind Kind, owner string) ([]catalog.ID, error) {
	t, ok := byKind[kind]
	if !ok {
		return nil, ErrInvalidKind
	}
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	q := fmt.Sprintf("SELECT entity_id FROM %s WHERE user_id = $1 ORDER BY created_at, entity_id", t.favorites)

	ids, err := repository.QueryMany(ctx, r.db, q, []any{owner}, func(s repository.Scanner) (catalog.ID, error) {
		var id catalog.ID
		err := s.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query %s favorites: %w", kind, err)
	}
	return ids, nil
}

// Add marks id for owner. Marking an id that is already marked, or one the
// collection does not hold, changes nothing.
func (r *repo) Add(ctx context.Context, kind Kind, owner string, id catalog.ID) error {
	t, ok := byKind[kind]
	if !ok {
		return ErrInvalidKind
	}
	if r.db == nil {
		return database.ErrUnavailable
	}
	if !id.IsNumeric() {
		return nil
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (user_id, entity_id)
		SELECT $1, e.id FROM %s e WHERE e.id = $2
		ON CONFLICT (user_id, entity_id) DO NOTHING`, t.favorites, t.entities)

	n, err := repository.ExecAffected(ctx, r.db, q, owner, id)
	if repository.Code(err) == repository.CodeForeignKeyViolation {
		// deleted between the lookup and the insert
		return nil
	}
	if err != nil {
		r.logger.Error("add favorite failed", "kind", kind, "owner", owner, "id", id, "error", err)
		return fmt.Errorf("add %s favorite: %w", kind, err)
	}

	if n > 0 {
		r.logger.Info("favorite added", "kind", kind, "owner", owner, "id", id)
	}
	return nil
}

func (r *repo) Remove(ctx context.Context, kind Kind, owner string, id catalog.ID) error {
	t, ok := byKind[kind]
	if !ok {
		return ErrInvalidKind
	}
	if r.db == nil {
		return database.ErrUnavailable
	}
	if !id.IsNumeric() {
		return nil
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND entity_id = $2", t.favorites)

	n, err := repository.ExecAffected(ctx, r.db, q, owner, id)
	if err != nil {
		r.logger.Error("remove favorite failed", "kind", kind, "owner", owner, "id", id, "error", err)
		return fmt.Errorf("remove %s favorite: %w", kind, err)
	}

	if n > 0 {
		r.logger.Info("favorite removed", "kind", kind, "owner", owner, "id", id)
	}
	return nil
}
