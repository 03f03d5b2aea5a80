package domain

import (
	"context"
	"time"
)

// RequestRepository defines persistence for media requests. UpdateStatus is
// the compare-and-swap primitive the lifecycle engine builds on: the write
// applies only when the stored status equals expected, otherwise
// ErrConflict is returned and nothing is mutated.
type RequestRepository interface {
	Create(ctx context.Context, req *MediaRequest) error
	GetByID(ctx context.Context, id string) (*MediaRequest, error)
	ListByOwner(ctx context.Context, ownerID string, filter RequestFilter) ([]MediaRequest, int, error)
	UpdateStatus(ctx context.Context, id string, expected RequestStatus, update StatusUpdate) (*MediaRequest, error)
	CountForOwnerSince(ctx context.Context, ownerID string, since time.Time) (int, error)
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*User, error)
}

// PaymentRepository handles payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Payment, int, error)
}

// AssetRepository handles persistence for generated assets.
type AssetRepository interface {
	SaveAll(ctx context.Context, requestID string, assets []MediaAsset) error
	ListByRequestID(ctx context.Context, requestID string) ([]MediaAsset, error)
}

// AnalyticsRepository updates daily metrics counters.
type AnalyticsRepository interface {
	IncrementCounters(ctx context.Context, day string, counters map[string]int) error
	GetSummary(ctx context.Context) (*AnalyticsDaily, error)
}
