package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/pagination"
	"github.com/JaimeStill/gallery/pkg/query"
	"github.com/JaimeStill/gallery/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the relational prompt store. A nil db yields a System whose
// operations fail with database.ErrUnavailable.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context) ([]Prompt, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	q, args := query.NewBuilder(projection, defaultSort).Build()

	prompts, err := repository.QueryMany(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		r.logger.Error("list prompts failed", "error", err)
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	return prompts, nil
}

func (r *repo) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Desc", "Prompt")

	filters.Apply(qb)

	if sort := sortFields(page.Sort); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	prompts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, database.ErrUnavailable
	}

	q, args := query.NewBuilder(projection).BuildCount()
	n, err := repository.QueryScalar[int](ctx, r.db, q, args...)
	if err != nil {
		return 0, fmt.Errorf("count prompts: %w", err)
	}
	return n, nil
}

func (r *repo) Find(ctx context.Context, id catalog.ID) (*Prompt, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}
	if !id.IsNumeric() {
		return nil, ErrNotFound
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand, owner string) (*Prompt, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	tags, err := encodeTags(cmd.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	isCustom := true
	if cmd.IsCustom != nil {
		isCustom = *cmd.IsCustom
	}

	q := fmt.Sprintf(`
		INSERT INTO public.prompts AS p (title, description, prompt, category, complexity, type, tags, is_custom, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, (SELECT id FROM public.users WHERE id = $9))
		RETURNING %s`, returning)

	args := []any{
		cmd.Title,
		nullable(cmd.Desc),
		cmd.Prompt,
		cmd.Category,
		cmd.Complexity.OrDefault(),
		TypeText,
		tags,
		isCustom,
		ownerID(owner),
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		r.logger.Error("create prompt failed", "title", cmd.Title, "error", err)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "title", p.Title, "category", p.Category)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id catalog.ID, cmd UpdateCommand) error {
	if cmd.Empty() {
		return nil
	}
	if r.db == nil {
		return database.ErrUnavailable
	}
	if !id.IsNumeric() {
		return ErrNotFound
	}

	u := query.NewUpdate("prompts").
		Set("title", cmd.Title).
		Set("description", cmd.Desc).
		Set("prompt", cmd.Prompt).
		Set("category", cmd.Category).
		Set("complexity", cmd.Complexity).
		Set("is_custom", cmd.IsCustom)

	if cmd.Tags != nil {
		tags, err := encodeTags(*cmd.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		// an empty list clears the column, which Set would skip as nil
		if tags == nil {
			tags = []byte("null")
		}
		u.Set("tags", tags)
	}

	q, args := u.Touch("updated_at").Build("id", id)

	if _, err := repository.ExecAffected(ctx, r.db, q, args...); err != nil {
		r.logger.Error("update prompt failed", "id", id, "error", err)
		return fmt.Errorf("update prompt %s: %w", id, err)
	}

	r.logger.Info("prompt updated", "id", id)
	return nil
}

func (r *repo) DeleteBatch(ctx context.Context, ids []catalog.ID) error {
	keys := catalog.NumericIDs(ids)
	if len(keys) == 0 {
		return nil
	}
	if r.db == nil {
		return database.ErrUnavailable
	}

	q := fmt.Sprintf("DELETE FROM prompts WHERE id IN (%s)", repository.Placeholders(1, len(keys)))

	n, err := repository.ExecAffected(ctx, r.db, q, keys...)
	if err != nil {
		r.logger.Error("delete prompts failed", "count", len(keys), "error", err)
		return fmt.Errorf("delete prompts: %w", err)
	}

	r.logger.Info("prompts deleted", "requested", len(keys), "deleted", n)
	return nil
}

var returning = projection.Columns()

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ownerID binds a numeric user id, or NULL for anonymous and offline owners.
// The insert keeps it only when the account exists.
func ownerID(owner string) *int64 {
	n, err := strconv.ParseInt(owner, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
