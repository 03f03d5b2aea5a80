package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/infra"
	"github.com/luxaccount/media-platform/internal/lifecycle"
	"github.com/luxaccount/media-platform/internal/middleware"
	"github.com/luxaccount/media-platform/internal/storage"
)

// App bundles the dependencies HTTP handlers need.
type App struct {
	Engine    *lifecycle.Engine
	Users     domain.UserRepository
	Payments  domain.PaymentRepository
	Assets    domain.AssetRepository
	Analytics domain.AnalyticsRepository
	Store     *storage.FileStore
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Validate  *validator.Validate
	Logger    zerolog.Logger
	Config    *infra.Config
}

func NewApp(engine *lifecycle.Engine, cfg *infra.Config, logger zerolog.Logger) *App {
	return &App{
		Engine:   engine,
		Validate: validator.New(),
		Logger:   logger,
		Config:   cfg,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: kind, Message: message})
}

// domainError maps domain sentinel errors onto HTTP responses. Unknown
// errors are logged and reported as 500 without leaking detail.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrAccessDenied):
		a.error(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, domain.ErrSubscriptionRequired):
		a.error(w, http.StatusPaymentRequired, "subscription_required", err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		a.error(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		a.error(w, http.StatusServiceUnavailable, "storage_unavailable", "storage backend unavailable")
	default:
		a.Logger.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("handler: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// track increments daily counters, best effort. Analytics must never
// fail a request.
func (a *App) track(r *http.Request, counters map[string]int) {
	if a.Analytics == nil {
		return
	}
	day := time.Now().UTC().Format("2006-01-02")
	if err := a.Analytics.IncrementCounters(r.Context(), day, counters); err != nil {
		a.Logger.Warn().Err(err).Msg("handlers: analytics increment failed")
	}
}

// TrackVisitors counts API traffic into the daily visitor metric.
func (a *App) TrackVisitors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.track(r, map[string]int{domain.CounterVisitors: 1})
		next.ServeHTTP(w, r)
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if err := a.Validate.Struct(v); err != nil {
		a.error(w, http.StatusBadRequest, "validation", err.Error())
		return false
	}
	return true
}
