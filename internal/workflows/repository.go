package workflows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/database"
	"github.com/JaimeStill/gallery/pkg/pagination"
	"github.com/JaimeStill/gallery/pkg/query"
	"github.com/JaimeStill/gallery/pkg/repository"
)

const (
	incrementViewsSQL = `
		INSERT INTO workflow_stats (workflow_id, views, downloads)
		VALUES ($1, 1, 0)
		ON CONFLICT (workflow_id) DO UPDATE SET views = workflow_stats.views + 1
		RETURNING views`

	incrementDownloadsSQL = `
		INSERT INTO workflow_stats (workflow_id, views, downloads)
		VALUES ($1, 0, 1)
		ON CONFLICT (workflow_id) DO UPDATE SET downloads = workflow_stats.downloads + 1
		RETURNING downloads`
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the relational workflow store. A nil db yields a System whose
// operations fail with database.ErrUnavailable.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "workflows"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context) ([]Workflow, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	q, args := query.NewBuilder(projection, defaultSort).Build()

	workflows, err := repository.QueryMany(ctx, r.db, q, args, scanWorkflow)
	if err != nil {
		r.logger.Error("list workflows failed", "error", err)
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	return workflows, nil
}

func (r *repo) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Workflow], error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description", "Detail")

	filters.Apply(qb)

	if sort := sortFields(page.Sort); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count workflows: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	workflows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanWorkflow)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}

	result := pagination.NewPageResult(workflows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, database.ErrUnavailable
	}

	n, err := repository.QueryScalar[int](ctx, r.db, "SELECT COUNT(*) FROM public.workflows")
	if err != nil {
		return 0, fmt.Errorf("count workflows: %w", err)
	}
	return n, nil
}

func (r *repo) Find(ctx context.Context, id catalog.ID) (*Workflow, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}
	return r.find(ctx, r.db, id)
}

func (r *repo) find(ctx context.Context, q repository.Querier, id catalog.ID) (*Workflow, error) {
	if !id.IsNumeric() {
		return nil, ErrNotFound
	}

	q2, args := query.NewBuilder(projection).BuildSingle("ID", id)

	w, err := repository.QueryOne(ctx, q, q2, args, scanWorkflow)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand, owner string) (*Workflow, error) {
	if r.db == nil {
		return nil, database.ErrUnavailable
	}

	images, err := encodeImages(cmd.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	isCustom := true
	if cmd.IsCustom != nil {
		isCustom = *cmd.IsCustom
	}

	var (
		authorName    *string
		authorIsAdmin bool
	)
	if cmd.Author != nil {
		authorName = &cmd.Author.Name
		authorIsAdmin = cmd.Author.IsAdmin
	}

	insert := `
		INSERT INTO workflows(
			title, description, detail, category, complexity, images,
			workflow_json, download_url, is_custom, user_id, author_name, author_is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT id FROM users WHERE id = $10), $11, $12)
		RETURNING id`

	args := []any{
		cmd.Title,
		cmd.Description,
		nullable(cmd.Detail),
		cmd.Category,
		cmd.Complexity.OrDefault(),
		images,
		nullable(cmd.WorkflowJSON),
		nullable(cmd.DownloadURL),
		isCustom,
		ownerID(owner),
		authorName,
		authorIsAdmin,
	}

	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Workflow, error) {
		id, err := repository.QueryScalar[catalog.ID](ctx, tx, insert, args...)
		if err != nil {
			return nil, err
		}

		// counters recorded for this id before the row existed do not carry over
		if _, err := tx.ExecContext(ctx, "DELETE FROM workflow_stats WHERE workflow_id = $1", id.String()); err != nil {
			return nil, err
		}

		return r.find(ctx, tx, id)
	})
	if err != nil {
		r.logger.Error("create workflow failed", "title", cmd.Title, "error", err)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("workflow created", "id", w.ID, "title", w.Title, "category", w.Category)
	return w, nil
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

	u := query.NewUpdate("workflows").
		Set("title", cmd.Title).
		Set("description", cmd.Description).
		Set("detail", cmd.Detail).
		Set("category", cmd.Category).
		Set("complexity", cmd.Complexity).
		Set("workflow_json", cmd.WorkflowJSON).
		Set("download_url", cmd.DownloadURL).
		Set("is_custom", cmd.IsCustom)

	if cmd.Images != nil {
		images, err := encodeImages(*cmd.Images)
		if err != nil {
			return fmt.Errorf("encode images: %w", err)
		}
		u.Set("images", images)
	}

	if cmd.Author != nil {
		u.Set("author_name", cmd.Author.Name).Set("author_is_admin", cmd.Author.IsAdmin)
	}

	q, args := u.Touch("updated_at").Build("id", id)

	if _, err := repository.ExecAffected(ctx, r.db, q, args...); err != nil {
		r.logger.Error("update workflow failed", "id", id, "error", err)
		return fmt.Errorf("update workflow %s: %w", id, err)
	}

	r.logger.Info("workflow updated", "id", id)
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

	statKeys := make([]any, len(keys))
	for i, k := range keys {
		statKeys[i] = strconv.FormatInt(k.(int64), 10)
	}

	in := repository.Placeholders(1, len(keys))

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		n, err := repository.ExecAffected(ctx, tx, fmt.Sprintf("DELETE FROM workflows WHERE id IN (%s)", in), keys...)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM workflow_stats WHERE workflow_id IN (%s)", in), statKeys...); err != nil {
			return 0, err
		}
		return n, nil
	})
	if err != nil {
		r.logger.Error("delete workflows failed", "count", len(keys), "error", err)
		return fmt.Errorf("delete workflows: %w", err)
	}

	r.logger.Info("workflows deleted", "requested", len(keys), "deleted", n)
	return nil
}

func (r *repo) IncrementViews(ctx context.Context, id catalog.ID) (int64, error) {
	return r.increment(ctx, incrementViewsSQL, id, "views")
}

func (r *repo) IncrementDownloads(ctx context.Context, id catalog.ID) (int64, error) {
	return r.increment(ctx, incrementDownloadsSQL, id, "downloads")
}

func (r *repo) increment(ctx context.Context, stmt string, id catalog.ID, counter string) (int64, error) {
	if id == "" {
		return 0, ErrMissingID
	}
	if r.db == nil {
		return 0, database.ErrUnavailable
	}

	n, err := repository.QueryScalar[int64](ctx, r.db, stmt, id.String())
	if err != nil {
		r.logger.Error("increment failed", "id", id, "counter", counter, "error", err)
		return 0, fmt.Errorf("increment %s for %s: %w", counter, id, err)
	}
	return n, nil
}

func (r *repo) Stats(ctx context.Context, id catalog.ID) (Stats, error) {
	if id == "" {
		return Stats{}, ErrMissingID
	}
	if r.db == nil {
		return Stats{}, database.ErrUnavailable
	}

	var s Stats
	err := r.db.QueryRowContext(ctx,
		"SELECT views, downloads FROM workflow_stats WHERE workflow_id = $1", id.String(),
	).Scan(&s.Views, &s.Downloads)

	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("read stats for %s: %w", id, err)
	}
	return s, nil
}

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
