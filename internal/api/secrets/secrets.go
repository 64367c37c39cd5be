package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/taskvault/backend/internal/types"
)

const (
	defaultUsersTable = "users"
	defaultTasksTable = "tasks"
)

// Provider fetches the configuration secrets the core depends on.
type Provider interface {
	Get(ctx context.Context) (*types.Secrets, error)
}

// EnvProvider reads secrets from the environment. godotenv in main makes a
// local .env file visible here.
type EnvProvider struct {
	logger *slog.Logger
}

func NewEnvProvider(logger *slog.Logger) *EnvProvider {
	return &EnvProvider{logger: logger}
}

func (p *EnvProvider) Get(ctx context.Context) (*types.Secrets, error) {
	p.logger.InfoContext(ctx, "Retrieving secrets")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		p.logger.ErrorContext(ctx, "JWT_SECRET is not set")
		return nil, fmt.Errorf("failed to retrieve secret: %w", types.ErrConfiguration)
	}

	usersTable := os.Getenv("USERS_TABLE")
	if usersTable == "" {
		usersTable = defaultUsersTable
	}
	tasksTable := os.Getenv("TASKS_TABLE")
	if tasksTable == "" {
		tasksTable = defaultTasksTable
	}

	return &types.Secrets{
		JWTSecret:  jwtSecret,
		UsersTable: usersTable,
		TasksTable: tasksTable,
	}, nil
}

// Cached memoizes the first successful fetch for the process lifetime.
// Failures are not cached, so a transient provider error does not poison
// later requests.
type Cached struct {
	inner Provider

	mu     sync.Mutex
	cached *types.Secrets
}

func NewCached(inner Provider) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) Get(ctx context.Context) (*types.Secrets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return c.cached, nil
	}

	sec, err := c.inner.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = sec
	return sec, nil
}
