package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrConflict             = errors.New("conflict")
	ErrSubscriptionRequired = errors.New("subscription required")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrValidation           = errors.New("validation failed")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)
