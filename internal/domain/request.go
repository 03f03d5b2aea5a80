package domain

import "time"

// MediaType enumerates supported generation categories.
type MediaType string

const (
	MediaTypeImage  MediaType = "image"
	MediaTypeVideo  MediaType = "video"
	MediaTypeAudio  MediaType = "audio"
	MediaTypeAvatar MediaType = "avatar"
	MediaTypeBanner MediaType = "banner"
)

// MediaQuality enumerates generation quality presets. Premium and ultra
// presets are gated by subscription tier.
type MediaQuality string

const (
	MediaQualityDraft    MediaQuality = "draft"
	MediaQualityStandard MediaQuality = "standard"
	MediaQualityPremium  MediaQuality = "premium"
	MediaQualityUltra    MediaQuality = "ultra"
)

// EstimatedCost returns the credit estimate quoted for a generation at
// this quality. The figure is informational until billing lands.
func (q MediaQuality) EstimatedCost() float64 {
	switch q {
	case MediaQualityDraft:
		return 0.50
	case MediaQualityPremium:
		return 2.50
	case MediaQualityUltra:
		return 5.00
	default:
		return 1.00
	}
}

// RequestStatus enumerates media request lifecycle states.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusFailed     RequestStatus = "failed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions other
// than an explicit retry from failed.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusFailed, RequestStatusCancelled:
		return true
	}
	return false
}

// MaxRetries bounds explicit retries and implicit worker requeues.
const MaxRetries = 3

// DefaultPriority is assigned when the caller does not set one.
const DefaultPriority = 5

// MediaRequest encapsulates the lifecycle of a single generation request.
// Requests are never deleted; terminal states are permanent history.
type MediaRequest struct {
	ID               string
	OwnerID          string
	Type             MediaType
	Prompt           string
	Parameters       []byte
	StylePreset      string
	Resolution       string
	Quality          MediaQuality
	Priority         int
	EstimatedCost    float64
	Status           RequestStatus
	RetryCount       int
	ErrorMessage     string
	ProcessingTimeMS int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// StatusUpdate describes a conditional status transition. Nil fields keep
// the stored value; ClearError resets error_message to empty.
type StatusUpdate struct {
	Status           RequestStatus
	ErrorMessage     *string
	ClearError       bool
	RetryCount       *int
	ProcessingTimeMS *int64
	CompletedAt      *time.Time
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status RequestStatus
	Type   MediaType
	Limit  int
	Offset int
}
