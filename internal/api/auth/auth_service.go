package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/backend/config"
	"github.com/taskvault/backend/internal/api/secrets"
	"github.com/taskvault/backend/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the credential operations.
type AuthService interface {
	// Register creates a new user with a hashed password.
	// Returns types.ErrConflict when the username is already taken.
	Register(ctx context.Context, username, password, email string) (*types.User, error)

	// Login verifies the credentials and returns a signed, time-limited token.
	// Unknown username and password mismatch are indistinguishable to the
	// caller: both return types.ErrUnauthenticated.
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	logger  *slog.Logger
	repo    UserRepo
	secrets secrets.Provider
	jwtCfg  config.JWTConfig
}

func NewAuthService(repo UserRepo, secretProvider secrets.Provider, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	if jwtCfg.TokenTTL <= 0 {
		jwtCfg.TokenTTL = time.Hour
	}
	return &AuthServiceImpl{
		logger:  logger,
		repo:    repo,
		secrets: secretProvider,
		jwtCfg:  jwtCfg,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email string) (*types.User, error) {
	l := s.logger.With(slog.String("service", "Register"))

	// Pre-check keeps the 409 path cheap; the unique index on username is
	// the actual guarantee against a racing registration.
	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		l.WarnContext(ctx, "User already exists", slog.String("username", username))
		return nil, types.ErrConflict
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &types.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	l.InfoContext(ctx, "User registered successfully", slog.String("username", user.Username))
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	l := s.logger.With(slog.String("service", "Login"))

	sec, err := s.secrets.Get(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve configuration secrets", slog.Any("error", err))
		return "", fmt.Errorf("login unavailable: %w", types.ErrConfiguration)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Logged for operators, but the caller sees the same outcome as
			// a bad password so usernames cannot be enumerated.
			l.WarnContext(ctx, "Login for unknown username", slog.String("username", username))
			return "", types.ErrUnauthenticated
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Invalid credentials provided", slog.String("username", username))
		return "", types.ErrUnauthenticated
	}

	now := time.Now()
	claims := types.Claims{
		UserID: user.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.TokenTTL)),
		},
	}
	if s.jwtCfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwtCfg.Audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(sec.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	// Best effort: a failed stamp must not fail the login.
	if err := s.repo.UpdateLastLogin(ctx, user.UserID, now.UTC()); err != nil {
		l.WarnContext(ctx, "Failed to update last login", slog.Any("error", err))
	}

	l.InfoContext(ctx, "User successfully authenticated", slog.String("user_id", user.UserID))
	return token, nil
}
