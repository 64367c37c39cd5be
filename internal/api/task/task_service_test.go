package task

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/internal/types"
)

// MockTaskRepo is a mock implementation of the TaskRepo interface
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) GetTask(ctx context.Context, userID, taskID string) (*types.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Task), args.Error(1)
}

func (m *MockTaskRepo) ListTasksByUserID(ctx context.Context, userID string) ([]types.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Task), args.Error(1)
}

func (m *MockTaskRepo) CreateTask(ctx context.Context, task *types.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepo) UpdateTask(ctx context.Context, params UpdateTaskParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockTaskRepo) DeleteTask(ctx context.Context, userID, taskID string) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	logger := slog.Default()

	t.Run("GeneratesIDAndTimestamps", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("CreateTask", ctx, mock.AnythingOfType("*types.Task")).Return(nil).Once()

		task, err := service.CreateTask(ctx, "user123", strPtr("buy milk"), nil)

		require.NoError(t, err)
		_, parseErr := uuid.Parse(task.TaskID)
		assert.NoError(t, parseErr)
		assert.Equal(t, "user123", task.UserID)
		require.NotNil(t, task.Title)
		assert.Equal(t, "buy milk", *task.Title)
		assert.Nil(t, task.Description)
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
		mockRepo.AssertExpectations(t)
	})
}

func TestUpdateTask(t *testing.T) {
	logger := slog.Default()

	existingTask := func() *types.Task {
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		return &types.Task{
			TaskID:      "task123",
			UserID:      "user123",
			Title:       strPtr("old title"),
			Description: strPtr("old description"),
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	}

	t.Run("MergesSuppliedFieldsOnly", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("GetTask", ctx, "user123", "task123").Return(existingTask(), nil).Once()
		mockRepo.On("UpdateTask", ctx, UpdateTaskParams{
			TaskID: "task123",
			UserID: "user123",
			Title:  strPtr("new title"),
		}).Return(nil).Once()

		task, err := service.UpdateTask(ctx, "user123", "task123", strPtr("new title"), nil)

		require.NoError(t, err)
		assert.Equal(t, "new title", *task.Title)
		assert.Equal(t, "old description", *task.Description)
		assert.True(t, task.UpdatedAt.After(task.CreatedAt))
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExplicitEmptyStringClears", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("GetTask", ctx, "user123", "task123").Return(existingTask(), nil).Once()
		mockRepo.On("UpdateTask", ctx, UpdateTaskParams{
			TaskID:      "task123",
			UserID:      "user123",
			Description: strPtr(""),
		}).Return(nil).Once()

		task, err := service.UpdateTask(ctx, "user123", "task123", nil, strPtr(""))

		require.NoError(t, err)
		assert.Equal(t, "old title", *task.Title)
		assert.Equal(t, "", *task.Description)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ForeignOwnerLooksLikeNotFound", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		// The compound-key read scopes by caller, so another user's task is
		// simply absent from the caller's point of view.
		mockRepo.On("GetTask", ctx, "intruder", "task123").Return(nil, types.ErrNotFound).Once()

		task, err := service.UpdateTask(ctx, "intruder", "task123", strPtr("hijacked"), nil)

		assert.Nil(t, task)
		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertNotCalled(t, "UpdateTask")
	})

	t.Run("RacingDeleteLooksLikeNotFound", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("GetTask", ctx, "user123", "task123").Return(existingTask(), nil).Once()
		mockRepo.On("UpdateTask", ctx, mock.AnythingOfType("UpdateTaskParams")).
			Return(types.ErrUpdateFailed).Once()

		task, err := service.UpdateTask(ctx, "user123", "task123", strPtr("new title"), nil)

		assert.Nil(t, task)
		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestDeleteTask(t *testing.T) {
	logger := slog.Default()

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("DeleteTask", ctx, "user123", "task123").Return(nil).Twice()

		assert.NoError(t, service.DeleteTask(ctx, "user123", "task123"))
		assert.NoError(t, service.DeleteTask(ctx, "user123", "task123"))
		mockRepo.AssertExpectations(t)
	})
}

func TestGetTasks(t *testing.T) {
	logger := slog.Default()

	t.Run("EmptyListIsNotAnError", func(t *testing.T) {
		mockRepo := new(MockTaskRepo)
		service := NewTaskService(mockRepo, logger)
		ctx := context.Background()

		mockRepo.On("ListTasksByUserID", ctx, "user123").Return([]types.Task{}, nil).Once()

		tasks, err := service.GetTasks(ctx, "user123")

		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
