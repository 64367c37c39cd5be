package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/taskvault/backend/app/observability/metrics"
	"github.com/taskvault/backend/internal/api"
	"github.com/taskvault/backend/internal/types"
)

type AuthHandler struct {
	authService AuthService
	metrics     *metrics.AppMetrics
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, appMetrics *metrics.AppMetrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     appMetrics,
		logger:      logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode register request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		l.WarnContext(ctx, "Validation failed", slog.String("error", errs.Error()))
		api.ValidationResponse(w, r, errs)
		return
	}

	user, err := h.authService.Register(ctx, req.Username, req.Password, req.Email)
	h.countRegister(r, err)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "User already exists")
			return
		}
		l.ErrorContext(ctx, "Error registering user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode login request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		l.WarnContext(ctx, "Validation failed", slog.String("error", errs.Error()))
		api.ValidationResponse(w, r, errs)
		return
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password)
	h.countLogin(r, err)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Error occurred during login", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{Token: token})
}

func (h *AuthHandler) countRegister(r *http.Request, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.RegisterRequestsTotal.Add(r.Context(), 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
}

func (h *AuthHandler) countLogin(r *http.Request, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.LoginRequestsTotal.Add(r.Context(), 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
}
