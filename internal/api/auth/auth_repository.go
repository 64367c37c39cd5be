package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/taskvault/backend/internal/types"
)

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for credential persistence.
type UserRepo interface {
	// CreateUser inserts a new user record.
	// Returns types.ErrConflict when the username is already taken.
	CreateUser(ctx context.Context, user *types.User) error

	// GetUserByUsername retrieves a user via the username secondary index.
	// Returns types.ErrNotFound when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)

	// UpdateLastLogin stamps the user's last successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
	table  string
}

// NewPostgresUserRepo builds a user repository bound to the given table.
// The table name comes from the secret provider so deployments can point
// at environment-specific tables.
func NewPostgresUserRepo(pgpool *pgxpool.Pool, tableName string, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
		table:  pgx.Identifier{tableName}.Sanitize(),
	}
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, user *types.User) error {
	ctx, span := otel.Tracer("taskvault/auth").Start(ctx, "CreateUser")
	defer span.End()
	span.SetAttributes(attribute.String("db.operation", "INSERT"))

	query := fmt.Sprintf(`
        INSERT INTO %s (user_id, username, email, password_hash, created_at, updated_at, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.table)

	_, err := r.pgpool.Exec(ctx, query,
		user.UserID, user.Username, user.Email, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt, user.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "username taken")
			return fmt.Errorf("username %q taken: %w", user.Username, types.ErrConflict)
		}
		span.RecordError(err)
		return fmt.Errorf("unable to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	ctx, span := otel.Tracer("taskvault/auth").Start(ctx, "GetUserByUsername")
	defer span.End()
	span.SetAttributes(attribute.String("db.operation", "SELECT"))

	query := fmt.Sprintf(`
        SELECT user_id, username, email, password_hash, created_at, updated_at, last_login, is_active
        FROM %s
        WHERE username = $1`, r.table)

	var user types.User
	err := r.pgpool.QueryRow(ctx, query, username).Scan(
		&user.UserID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLogin, &user.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("unable to retrieve user by username: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_login = $1 WHERE user_id = $2`, r.table)

	tag, err := r.pgpool.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("unable to update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
