package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskvault/backend/internal/types"
)

var _ TaskService = (*TaskServiceImpl)(nil)

// TaskService owns the business rules over tasks: ownership, defaulting
// and the spread-merge semantics of partial updates.
type TaskService interface {
	CreateTask(ctx context.Context, userID string, title, description *string) (*types.Task, error)
	GetTasks(ctx context.Context, userID string) ([]types.Task, error)

	// UpdateTask fails with types.ErrNotFound when the task does not exist
	// OR belongs to another user; the two cases are indistinguishable to the
	// caller so task existence never leaks across users.
	UpdateTask(ctx context.Context, userID, taskID string, title, description *string) (*types.Task, error)

	// DeleteTask succeeds even when the task is already gone.
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type TaskServiceImpl struct {
	logger *slog.Logger
	repo   TaskRepo
}

func NewTaskService(repo TaskRepo, logger *slog.Logger) *TaskServiceImpl {
	return &TaskServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, userID string, title, description *string) (*types.Task, error) {
	now := time.Now().UTC()
	task := &types.Task{
		TaskID:      uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.InfoContext(ctx, "Task created", slog.String("task_id", task.TaskID), slog.String("user_id", userID))
	return task, nil
}

func (s *TaskServiceImpl) GetTasks(ctx context.Context, userID string) ([]types.Task, error) {
	return s.repo.ListTasksByUserID(ctx, userID)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, userID, taskID string, title, description *string) (*types.Task, error) {
	existing, err := s.repo.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task for update: %w", err)
	}

	merged := *existing
	if title != nil {
		merged.Title = title
	}
	if description != nil {
		merged.Description = description
	}
	merged.UpdatedAt = time.Now().UTC()

	err = s.repo.UpdateTask(ctx, UpdateTaskParams{
		TaskID:      taskID,
		UserID:      userID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		// The existence guard failing after a successful read means the row
		// vanished in between (racing delete); the task is simply gone.
		if errors.Is(err, types.ErrUpdateFailed) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return &merged, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.repo.DeleteTask(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.InfoContext(ctx, "Task deleted", slog.String("task_id", taskID), slog.String("user_id", userID))
	return nil
}
