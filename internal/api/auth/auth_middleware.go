package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taskvault/backend/internal/api"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"
const ClaimsKey contextKey = "claims"

// Authenticate gates protected routes behind the Authorizer. A Deny
// decision maps to 401; a secret-retrieval failure is the one hard 500.
func Authenticate(authorizer *Authorizer, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			decision, err := authorizer.Authorize(ctx, r.Header.Get("Authorization"))
			if err != nil {
				l.ErrorContext(ctx, "Authorizer configuration failure", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}

			if decision.Effect != EffectAllow {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, decision.Principal)
			ctx = context.WithValue(ctx, ClaimsKey, decision.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext returns the principal set by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
