package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/taskvault/backend/app/observability/metrics"
	"github.com/taskvault/backend/internal/api/secrets"
	"github.com/taskvault/backend/internal/types"
)

// Effect is the authorization outcome attached to a decision.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

const deniedPrincipal = "unauthorized"

// Decision is the result of verifying a presented credential.
// On Allow, Principal carries the token subject and Context the serialized
// claims for downstream consumers.
type Decision struct {
	Effect    Effect
	Principal string
	Claims    *types.Claims
	Context   map[string]string
}

// Authorizer verifies bearer credentials at the request boundary.
type Authorizer struct {
	logger  *slog.Logger
	secrets secrets.Provider
	metrics *metrics.AppMetrics
}

func NewAuthorizer(secretProvider secrets.Provider, appMetrics *metrics.AppMetrics, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		logger:  logger,
		secrets: secretProvider,
		metrics: appMetrics,
	}
}

// Authorize inspects an Authorization header value and produces an
// allow/deny decision. Every token failure resolves to a Deny decision;
// the only error that escapes is a secret-retrieval failure, which is a
// fatal configuration problem rather than a trust decision.
func (a *Authorizer) Authorize(ctx context.Context, authorizationHeader string) (Decision, error) {
	l := a.logger.With(slog.String("component", "Authorizer"))

	sec, err := a.secrets.Get(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("authorizer secrets unavailable: %w", err)
	}

	token := extractBearerToken(authorizationHeader)
	if token == "" {
		l.WarnContext(ctx, "no token is provided, deny access")
		a.count(ctx, EffectDeny, "missing_token")
		return deny(), nil
	}

	claims := &types.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(sec.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = jwt.ErrTokenUnverifiable
		}
		l.ErrorContext(ctx, "Token verification failed", slog.Any("error", err))
		a.count(ctx, EffectDeny, "verification_failed")
		return deny(), nil
	}

	l.InfoContext(ctx, "Allow access", slog.String("principal", claims.Subject))
	a.count(ctx, EffectAllow, "ok")

	serialized, err := json.Marshal(claims)
	if err != nil {
		// Claims marshaling cannot realistically fail for this shape; treat
		// it as a verification failure rather than let it escape.
		l.ErrorContext(ctx, "Failed to serialize claims", slog.Any("error", err))
		return deny(), nil
	}

	return Decision{
		Effect:    EffectAllow,
		Principal: claims.Subject,
		Claims:    claims,
		Context:   map[string]string{"user": string(serialized)},
	}, nil
}

func deny() Decision {
	return Decision{Effect: EffectDeny, Principal: deniedPrincipal}
}

// extractBearerToken takes the second whitespace-separated field of a
// "scheme value" header, or empty when the header has no credential part.
func extractBearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func (a *Authorizer) count(ctx context.Context, effect Effect, reason string) {
	if a.metrics == nil {
		return
	}
	a.metrics.AuthorizerDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("effect", string(effect)),
		attribute.String("reason", reason),
	))
}
