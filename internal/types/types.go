package types

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrMissingKey = errors.New("both task_id and user_id are required")
var ErrUpdateFailed = errors.New("conditional update failed, item does not exist")
var ErrConfiguration = errors.New("configuration secrets unavailable")

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	UserID       string     `json:"user_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// Task is a user-owned item. Title and Description are pointers so that
// an absent field and an explicitly cleared one stay distinguishable.
type Task struct {
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Claims is the decoded payload of an access token. Subject carries the
// user id and is the source of the authorizer principal.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Secrets holds the process configuration fetched from the secret provider.
type Secrets struct {
	JWTSecret  string
	UsersTable string
	TasksTable string
}
