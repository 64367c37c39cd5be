package secrets

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/internal/types"
)

type countingProvider struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (p *countingProvider) Get(ctx context.Context) (*types.Secrets, error) {
	p.calls.Add(1)
	if p.fail.Load() {
		return nil, errors.New("secret store down")
	}
	return &types.Secrets{JWTSecret: "s", UsersTable: "users", TasksTable: "tasks"}, nil
}

func TestCachedMemoizesFirstSuccess(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCached(inner)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sec, err := cached.Get(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "s", sec.JWTSecret)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{}
	inner.fail.Store(true)
	cached := NewCached(inner)
	ctx := context.Background()

	_, err := cached.Get(ctx)
	require.Error(t, err)

	inner.fail.Store(false)
	sec, err := cached.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tasks", sec.TasksTable)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestEnvProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("MissingJWTSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := NewEnvProvider(logger).Get(context.Background())
		assert.ErrorIs(t, err, types.ErrConfiguration)
	})

	t.Run("DefaultsTableNames", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "topsecret")
		t.Setenv("USERS_TABLE", "")
		t.Setenv("TASKS_TABLE", "")

		sec, err := NewEnvProvider(logger).Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "topsecret", sec.JWTSecret)
		assert.Equal(t, "users", sec.UsersTable)
		assert.Equal(t, "tasks", sec.TasksTable)
	})
}
