package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/taskvault/backend/app/observability/metrics"
	"github.com/taskvault/backend/internal/types"
)

// Querier is the slice of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ TaskRepo = (*PostgresTaskRepo)(nil)

// UpdateTaskParams is a partial task update. Title and Description are
// included in the write only when non-nil; UpdatedAt is always refreshed.
type UpdateTaskParams struct {
	TaskID      string
	UserID      string
	Title       *string
	Description *string
}

// TaskRepo defines the contract for task persistence. Tasks are keyed by
// the compound (user id, task id), so every operation is ownership-scoped.
type TaskRepo interface {
	// GetTask returns types.ErrNotFound when no row matches both keys.
	GetTask(ctx context.Context, userID, taskID string) (*types.Task, error)

	// ListTasksByUserID uses the owning-user secondary index. No tasks is an
	// empty slice, not an error.
	ListTasksByUserID(ctx context.Context, userID string) ([]types.Task, error)

	CreateTask(ctx context.Context, task *types.Task) error

	// UpdateTask performs an existence-guarded partial update. It returns
	// types.ErrMissingKey before any I/O when either key is empty and
	// types.ErrUpdateFailed when the target row does not exist, so an update
	// can never silently create an item.
	UpdateTask(ctx context.Context, params UpdateTaskParams) error

	// DeleteTask is idempotent: deleting an absent task succeeds.
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type PostgresTaskRepo struct {
	logger  *slog.Logger
	db      Querier
	table   string
	metrics *metrics.AppMetrics
}

func NewPostgresTaskRepo(db Querier, tableName string, appMetrics *metrics.AppMetrics, logger *slog.Logger) *PostgresTaskRepo {
	return &PostgresTaskRepo{
		logger:  logger,
		db:      db,
		table:   pgx.Identifier{tableName}.Sanitize(),
		metrics: appMetrics,
	}
}

func (r *PostgresTaskRepo) GetTask(ctx context.Context, userID, taskID string) (*types.Task, error) {
	ctx, span := otel.Tracer("taskvault/task").Start(ctx, "GetTask")
	defer span.End()

	query := fmt.Sprintf(`
        SELECT task_id, user_id, title, description, created_at, updated_at
        FROM %s
        WHERE user_id = $1 AND task_id = $2`, r.table)

	start := time.Now()
	var t types.Task
	err := r.db.QueryRow(ctx, query, userID, taskID).Scan(
		&t.TaskID, &t.UserID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	r.observe(ctx, "get_task", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("unable to get task by ID: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepo) ListTasksByUserID(ctx context.Context, userID string) ([]types.Task, error) {
	ctx, span := otel.Tracer("taskvault/task").Start(ctx, "ListTasksByUserID")
	defer span.End()

	query := fmt.Sprintf(`
        SELECT task_id, user_id, title, description, created_at, updated_at
        FROM %s
        WHERE user_id = $1
        ORDER BY created_at`, r.table)

	start := time.Now()
	rows, err := r.db.Query(ctx, query, userID)
	r.observe(ctx, "list_tasks", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("unable to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.TaskID, &t.UserID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to query tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepo) CreateTask(ctx context.Context, task *types.Task) error {
	ctx, span := otel.Tracer("taskvault/task").Start(ctx, "CreateTask")
	defer span.End()

	query := fmt.Sprintf(`
        INSERT INTO %s (task_id, user_id, title, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, r.table)

	start := time.Now()
	_, err := r.db.Exec(ctx, query,
		task.TaskID, task.UserID, task.Title, task.Description, task.CreatedAt, task.UpdatedAt)
	r.observe(ctx, "create_task", start, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("unable to create task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepo) UpdateTask(ctx context.Context, params UpdateTaskParams) error {
	if params.TaskID == "" || params.UserID == "" {
		return types.ErrMissingKey
	}

	ctx, span := otel.Tracer("taskvault/task").Start(ctx, "UpdateTask")
	defer span.End()
	span.SetAttributes(attribute.String("task.id", params.TaskID))

	// Assemble the SET clause from the fields actually supplied, plus the
	// always-refreshed timestamp. The WHERE on both keys is the existence
	// guard: the write cannot create a row or touch a foreign one.
	setClauses := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if params.Title != nil {
		args = append(args, *params.Title)
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", len(args)))
	}
	if params.Description != nil {
		args = append(args, *params.Description)
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", len(args)))
	}
	args = append(args, time.Now().UTC())
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, params.UserID)
	userIDPos := len(args)
	args = append(args, params.TaskID)
	taskIDPos := len(args)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = $%d AND task_id = $%d",
		r.table, strings.Join(setClauses, ", "), userIDPos, taskIDPos)

	start := time.Now()
	tag, err := r.db.Exec(ctx, query, args...)
	r.observe(ctx, "update_task", start, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("unable to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUpdateFailed
	}
	return nil
}

func (r *PostgresTaskRepo) DeleteTask(ctx context.Context, userID, taskID string) error {
	ctx, span := otel.Tracer("taskvault/task").Start(ctx, "DeleteTask")
	defer span.End()

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND task_id = $2`, r.table)

	start := time.Now()
	// Zero rows affected is fine: deleting an already-deleted task is a no-op.
	_, err := r.db.Exec(ctx, query, userID, taskID)
	r.observe(ctx, "delete_task", start, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("unable to delete task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepo) observe(ctx context.Context, op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("operation", op))
	r.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		r.metrics.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
