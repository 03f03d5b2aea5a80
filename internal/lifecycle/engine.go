// Package lifecycle owns the media request state machine: creation guards
// (tier gating, daily quota), ownership checks, explicit retries, and the
// worker-side transitions. All status writes go through the repository's
// compare-and-swap update so concurrent transitions on the same request
// resolve to exactly one winner.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/queue"
)

const (
	// MaxStoredErrorLen bounds persisted error text; verbose backend
	// traces must not grow storage without limit.
	MaxStoredErrorLen = 500
	// MaxLoggedErrorLen bounds error text emitted to logs.
	MaxLoggedErrorLen = 200
)

// Engine coordinates media request lifecycle transitions. It holds no
// state of its own; every decision is made against the stored record.
type Engine struct {
	requests domain.RequestRepository
	users    domain.UserRepository
	queue    queue.Publisher
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine constructs the engine with its collaborators.
func NewEngine(requests domain.RequestRepository, users domain.UserRepository, publisher queue.Publisher, logger zerolog.Logger) *Engine {
	return &Engine{
		requests: requests,
		users:    users,
		queue:    publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInput carries the caller-controlled fields of a new request.
type CreateInput struct {
	Type        domain.MediaType
	Prompt      string
	Parameters  []byte
	StylePreset string
	Resolution  string
	Quality     domain.MediaQuality
	Priority    int
}

// Create validates tier and quota guards and persists a pending request,
// then publishes the generation job.
func (e *Engine) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.MediaRequest, error) {
	owner, err := e.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Suspended() {
		return nil, fmt.Errorf("account suspended: %w", domain.ErrAccessDenied)
	}

	if input.Quality == "" {
		input.Quality = domain.MediaQualityStandard
	}
	if input.Priority == 0 {
		input.Priority = domain.DefaultPriority
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if !owner.Tier.AllowsQuality(input.Quality) {
		required := domain.TierPremium
		if input.Quality == domain.MediaQualityUltra {
			required = domain.TierEnterprise
		}
		return nil, fmt.Errorf("quality %s requires %s subscription: %w", input.Quality, required, domain.ErrSubscriptionRequired)
	}

	limit := owner.Tier.DailyLimit()
	midnight := startOfDayUTC(e.now())
	createdToday, err := e.requests.CountForOwnerSince(ctx, ownerID, midnight)
	if err != nil {
		return nil, err
	}
	if createdToday >= limit {
		return nil, fmt.Errorf("daily limit of %d requests exceeded: %w", limit, domain.ErrRateLimited)
	}

	nowTS := e.now().UTC()
	req := &domain.MediaRequest{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Type:          input.Type,
		Prompt:        input.Prompt,
		Parameters:    input.Parameters,
		StylePreset:   input.StylePreset,
		Resolution:    input.Resolution,
		Quality:       input.Quality,
		Priority:      input.Priority,
		EstimatedCost: input.Quality.EstimatedCost(),
		Status:        domain.RequestStatusPending,
		CreatedAt:     nowTS,
		UpdatedAt:     nowTS,
	}
	if err := e.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	e.publishJob(ctx, req, 0)

	e.logger.Info().
		Str("request_id", req.ID).
		Str("owner_id", ownerID).
		Str("media_type", string(req.Type)).
		Str("quality", string(req.Quality)).
		Msg("lifecycle: request created")
	return req, nil
}

// Get loads a request and enforces ownership.
func (e *Engine) Get(ctx context.Context, callerID, id string) (*domain.MediaRequest, error) {
	req, err := e.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != callerID {
		return nil, domain.ErrAccessDenied
	}
	return req, nil
}

// List returns the caller's requests with the given filter applied.
func (e *Engine) List(ctx context.Context, callerID string, filter domain.RequestFilter) ([]domain.MediaRequest, int, error) {
	return e.requests.ListByOwner(ctx, callerID, filter)
}

// Cancel moves a pending or processing request to cancelled. A race with a
// concurrent transition is retried once against the fresh status; if the
// request has meanwhile reached a non-cancellable state the caller gets a
// conflict naming it.
func (e *Engine) Cancel(ctx context.Context, callerID, id string) (*domain.MediaRequest, error) {
	req, err := e.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < 2; attempt++ {
		if req.Status != domain.RequestStatusPending && req.Status != domain.RequestStatusProcessing {
			return nil, transitionConflict("cancel", req.Status)
		}
		updated, err := e.requests.UpdateStatus(ctx, id, req.Status, domain.StatusUpdate{Status: domain.RequestStatusCancelled})
		if err == nil {
			e.logger.Info().Str("request_id", id).Str("owner_id", callerID).Msg("lifecycle: request cancelled")
			return updated, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		if req, err = e.requests.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return nil, transitionConflict("cancel", req.Status)
}

// Retry re-queues a failed request at the owner's explicit demand. The
// retry counter is incremented and bounded; the stored error is cleared.
func (e *Engine) Retry(ctx context.Context, callerID, id string) (*domain.MediaRequest, error) {
	req, err := e.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusFailed {
		return nil, transitionConflict("retry", req.Status)
	}
	if req.RetryCount >= domain.MaxRetries {
		return nil, fmt.Errorf("maximum retry limit reached: %w", domain.ErrConflict)
	}

	retries := req.RetryCount + 1
	updated, err := e.requests.UpdateStatus(ctx, id, domain.RequestStatusFailed, domain.StatusUpdate{
		Status:     domain.RequestStatusPending,
		RetryCount: &retries,
		ClearError: true,
	})
	if err != nil {
		return nil, err
	}

	e.publishJob(ctx, updated, updated.RetryCount)

	e.logger.Info().
		Str("request_id", id).
		Str("owner_id", callerID).
		Int("retry_count", updated.RetryCount).
		Msg("lifecycle: request retried")
	return updated, nil
}

// BeginProcessing claims a pending request for a worker. A conflict means
// another worker already claimed it or the owner cancelled it; the caller
// must not generate in that case.
func (e *Engine) BeginProcessing(ctx context.Context, id string) (*domain.MediaRequest, error) {
	return e.requests.UpdateStatus(ctx, id, domain.RequestStatusPending, domain.StatusUpdate{
		Status: domain.RequestStatusProcessing,
	})
}

// CompleteProcessing records terminal success. The swap is conditional on
// the request still being in processing: if the owner cancelled while
// generation ran, the conflict tells the worker to discard the result.
func (e *Engine) CompleteProcessing(ctx context.Context, id string, duration time.Duration) (*domain.MediaRequest, error) {
	completedAt := e.now().UTC()
	ms := duration.Milliseconds()
	return e.requests.UpdateStatus(ctx, id, domain.RequestStatusProcessing, domain.StatusUpdate{
		Status:           domain.RequestStatusCompleted,
		ProcessingTimeMS: &ms,
		CompletedAt:      &completedAt,
	})
}

// FailProcessing records terminal failure with a bounded error message.
func (e *Engine) FailProcessing(ctx context.Context, id, message string) (*domain.MediaRequest, error) {
	msg := Truncate(message, MaxStoredErrorLen)
	return e.requests.UpdateStatus(ctx, id, domain.RequestStatusProcessing, domain.StatusUpdate{
		Status:       domain.RequestStatusFailed,
		ErrorMessage: &msg,
	})
}

// ReleaseForRetry returns a processing request to pending after a
// retryable generation failure. The persisted retry counter is not
// touched; the job message's attempt counter bounds implicit requeues.
func (e *Engine) ReleaseForRetry(ctx context.Context, id, message string) (*domain.MediaRequest, error) {
	msg := Truncate(message, MaxStoredErrorLen)
	return e.requests.UpdateStatus(ctx, id, domain.RequestStatusProcessing, domain.StatusUpdate{
		Status:       domain.RequestStatusPending,
		ErrorMessage: &msg,
	})
}

func (e *Engine) publishJob(ctx context.Context, req *domain.MediaRequest, attempt int) {
	if e.queue == nil {
		return
	}
	job := queue.Job{
		RequestID:  req.ID,
		OwnerID:    req.OwnerID,
		MediaType:  req.Type,
		Prompt:     req.Prompt,
		Quality:    req.Quality,
		Attempt:    attempt,
		MaxRetries: domain.MaxRetries,
	}
	if err := e.queue.Publish(ctx, job); err != nil {
		// The pending record survives; the owner can requeue via retry.
		e.logger.Error().Err(err).Str("request_id", req.ID).Msg("lifecycle: publish job failed")
	}
}

func validateInput(input CreateInput) error {
	switch input.Type {
	case domain.MediaTypeImage, domain.MediaTypeVideo, domain.MediaTypeAudio, domain.MediaTypeAvatar, domain.MediaTypeBanner:
	default:
		return fmt.Errorf("unsupported media type %q: %w", input.Type, domain.ErrValidation)
	}
	switch input.Quality {
	case domain.MediaQualityDraft, domain.MediaQualityStandard, domain.MediaQualityPremium, domain.MediaQualityUltra:
	default:
		return fmt.Errorf("unsupported quality %q: %w", input.Quality, domain.ErrValidation)
	}
	if input.Prompt == "" {
		return fmt.Errorf("prompt is required: %w", domain.ErrValidation)
	}
	if input.Priority < 1 || input.Priority > 10 {
		return fmt.Errorf("priority must be between 1 and 10: %w", domain.ErrValidation)
	}
	return nil
}

func transitionConflict(op string, status domain.RequestStatus) error {
	return fmt.Errorf("cannot %s request in status %s: %w", op, status, domain.ErrConflict)
}

// Truncate clamps s to at most max bytes without splitting a UTF-8 rune:
// the cut backs up to the nearest rune boundary so the stored text stays
// valid UTF-8.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
