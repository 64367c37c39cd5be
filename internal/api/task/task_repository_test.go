package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/internal/types"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresTaskRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresTaskRepo(mock, "tasks", nil, slog.Default())
}

func TestUpdateTaskConditionalWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingKeysRejectedBeforeAnyWrite", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		err := repo.UpdateTask(ctx, UpdateTaskParams{TaskID: "", UserID: "user123", Title: strPtr("x")})
		assert.ErrorIs(t, err, types.ErrMissingKey)

		err = repo.UpdateTask(ctx, UpdateTaskParams{TaskID: "task123", UserID: "", Title: strPtr("x")})
		assert.ErrorIs(t, err, types.ErrMissingKey)

		// No expectations were set: any backend call would have failed the test.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OnlySuppliedFieldsInSetClause", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE "tasks" SET title = $1, updated_at = $2 WHERE user_id = $3 AND task_id = $4`).
			WithArgs("new title", pgxmock.AnyArg(), "user123", "task123").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateTask(ctx, UpdateTaskParams{
			TaskID: "task123",
			UserID: "user123",
			Title:  strPtr("new title"),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BothFieldsSupplied", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE "tasks" SET title = $1, description = $2, updated_at = $3 WHERE user_id = $4 AND task_id = $5`).
			WithArgs("new title", "new description", pgxmock.AnyArg(), "user123", "task123").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateTask(ctx, UpdateTaskParams{
			TaskID:      "task123",
			UserID:      "user123",
			Title:       strPtr("new title"),
			Description: strPtr("new description"),
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoFieldsStillTouchesUpdatedAt", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE "tasks" SET updated_at = $1 WHERE user_id = $2 AND task_id = $3`).
			WithArgs(pgxmock.AnyArg(), "user123", "task123").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateTask(ctx, UpdateTaskParams{TaskID: "task123", UserID: "user123"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowSurfacesAsUpdateFailed", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		// The existence guard: zero rows matched means the item was never
		// there, and the update must not have created it.
		mock.ExpectExec(`UPDATE "tasks" SET title = $1, updated_at = $2 WHERE user_id = $3 AND task_id = $4`).
			WithArgs("new title", pgxmock.AnyArg(), "user123", "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateTask(ctx, UpdateTaskParams{
			TaskID: "missing",
			UserID: "user123",
			Title:  strPtr("new title"),
		})

		assert.ErrorIs(t, err, types.ErrUpdateFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BackendErrorIsWrapped", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectExec(`UPDATE "tasks" SET title = $1, updated_at = $2 WHERE user_id = $3 AND task_id = $4`).
			WithArgs("new title", pgxmock.AnyArg(), "user123", "task123").
			WillReturnError(errors.New("connection reset"))

		err := repo.UpdateTask(ctx, UpdateTaskParams{
			TaskID: "task123",
			UserID: "user123",
			Title:  strPtr("new title"),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to update task")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteTaskIdempotent(t *testing.T) {
	ctx := context.Background()
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM "tasks" WHERE user_id = $1 AND task_id = $2`).
		WithArgs("user123", "gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteTask(ctx, "user123", "gone")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTaskScopedByOwner(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewPostgresTaskRepo(mock, "tasks", nil, slog.Default())

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"task_id", "user_id", "title", "description", "created_at", "updated_at"}).
		AddRow("task123", "user123", strPtr("buy milk"), (*string)(nil), created, created)

	mock.ExpectQuery(`SELECT task_id, user_id, title, description, created_at, updated_at`).
		WithArgs("user123", "task123").
		WillReturnRows(rows)

	task, err := repo.GetTask(ctx, "user123", "task123")

	require.NoError(t, err)
	assert.Equal(t, "task123", task.TaskID)
	assert.Equal(t, "buy milk", *task.Title)
	assert.Nil(t, task.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}
