// Package memory provides mutex-guarded in-memory implementations of the
// domain repositories. They back tests and stub deployments and honor the
// same compare-and-swap contract as the PostgreSQL implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luxaccount/media-platform/internal/domain"
)

// RequestRepository is an in-memory domain.RequestRepository.
type RequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.MediaRequest
	now      func() time.Time
}

// NewRequestRepository constructs an empty request store.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		requests: make(map[string]*domain.MediaRequest),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source. Intended for tests.
func (r *RequestRepository) SetClock(now func() time.Time) { r.now = now }

// Create stores the request.
func (r *RequestRepository) Create(_ context.Context, req *domain.MediaRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored request.
func (r *RequestRepository) GetByID(_ context.Context, id string) (*domain.MediaRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

// ListByOwner returns the owner's requests, newest first.
func (r *RequestRepository) ListByOwner(_ context.Context, ownerID string, filter domain.RequestFilter) ([]domain.MediaRequest, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.MediaRequest
	for _, req := range r.requests {
		if req.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Type != "" && req.Type != filter.Type {
			continue
		}
		matched = append(matched, *req)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// UpdateStatus applies the update only when the stored status equals
// expected. Guard evaluation and write happen under one lock, which is
// what makes the swap atomic with respect to concurrent transitions.
func (r *RequestRepository) UpdateStatus(_ context.Context, id string, expected domain.RequestStatus, update domain.StatusUpdate) (*domain.MediaRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.Status != expected {
		return nil, domain.ErrConflict
	}

	req.Status = update.Status
	req.UpdatedAt = r.now().UTC()
	if update.ClearError {
		req.ErrorMessage = ""
	} else if update.ErrorMessage != nil {
		req.ErrorMessage = *update.ErrorMessage
	}
	if update.RetryCount != nil {
		req.RetryCount = *update.RetryCount
	}
	if update.ProcessingTimeMS != nil {
		req.ProcessingTimeMS = *update.ProcessingTimeMS
	}
	if update.CompletedAt != nil {
		completedAt := *update.CompletedAt
		req.CompletedAt = &completedAt
	}
	cp := *req
	return &cp, nil
}

// CountForOwnerSince counts the owner's requests created at or after since.
func (r *RequestRepository) CountForOwnerSince(_ context.Context, ownerID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, req := range r.requests {
		if req.OwnerID == ownerID && !req.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// UserRepository is an in-memory domain.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository constructs an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

// Create stores the user.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored user.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Update applies the non-nil fields of the update.
func (r *UserRepository) Update(_ context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.Tier != nil {
		user.Tier = *update.Tier
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	return &cp, nil
}

// PaymentRepository is an in-memory domain.PaymentRepository.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

// NewPaymentRepository constructs an empty payment store.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]*domain.Payment)}
}

// Create stores the payment.
func (r *PaymentRepository) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored payment.
func (r *PaymentRepository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *payment
	return &cp, nil
}

// ListByUser returns the user's payments, newest first.
func (r *PaymentRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Payment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			matched = append(matched, *payment)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset > 0 {
		if offset >= total {
			return nil, total, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// AssetRepository is an in-memory domain.AssetRepository.
type AssetRepository struct {
	mu     sync.RWMutex
	assets map[string][]domain.MediaAsset
}

// NewAssetRepository constructs an empty asset store.
func NewAssetRepository() *AssetRepository {
	return &AssetRepository{assets: make(map[string][]domain.MediaAsset)}
}

// SaveAll appends the assets under the request id.
func (r *AssetRepository) SaveAll(_ context.Context, requestID string, assets []domain.MediaAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[requestID] = append(r.assets[requestID], assets...)
	return nil
}

// ListByRequestID returns the assets saved for the request.
func (r *AssetRepository) ListByRequestID(_ context.Context, requestID string) ([]domain.MediaAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.MediaAsset(nil), r.assets[requestID]...), nil
}

// AnalyticsRepository is an in-memory domain.AnalyticsRepository.
type AnalyticsRepository struct {
	mu   sync.Mutex
	days map[string]map[string]int
}

// NewAnalyticsRepository constructs an empty analytics store.
func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{days: make(map[string]map[string]int)}
}

// IncrementCounters adds the counters to the given day.
func (r *AnalyticsRepository) IncrementCounters(_ context.Context, day string, counters map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.days[day]
	if !ok {
		bucket = make(map[string]int)
		r.days[day] = bucket
	}
	for key, delta := range counters {
		bucket[key] += delta
	}
	return nil
}

// GetSummary returns counters for the most recent day.
func (r *AnalyticsRepository) GetSummary(_ context.Context) (*domain.AnalyticsDaily, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.days) == 0 {
		return nil, domain.ErrNotFound
	}
	var latest string
	for day := range r.days {
		if day > latest {
			latest = day
		}
	}
	bucket := r.days[latest]
	day, _ := time.Parse("2006-01-02", latest)
	return &domain.AnalyticsDaily{
		Day:             day,
		Visitors:        bucket[domain.CounterVisitors],
		AIRequests:      bucket[domain.CounterAIRequests],
		ImagesGenerated: bucket[domain.CounterImagesGenerated],
		VideosGenerated: bucket[domain.CounterVideosGenerated],
		RequestSuccess:  bucket[domain.CounterRequestSuccess],
		RequestFail:     bucket[domain.CounterRequestFail],
	}, nil
}
