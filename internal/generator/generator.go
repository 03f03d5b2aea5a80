package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxaccount/media-platform/internal/domain"
)

// GenerateRequest carries everything a backend needs to produce media.
type GenerateRequest struct {
	RequestID string
	OwnerID   string
	Type      domain.MediaType
	Prompt    string
	Quality   domain.MediaQuality
}

// GeneratedAsset is returned by generators prior to persistence.
type GeneratedAsset struct {
	FileName   string
	MIMEType   string
	Resolution string
	Data       []byte
}

// Generator produces media assets for a request. Implementations may run
// arbitrarily long; callers bound them with a context deadline.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]GeneratedAsset, error)
}

// Error is a generation failure tagged with retryability. Backend faults
// that a fresh attempt could clear (capacity, transient upstream errors)
// are retryable; malformed prompts and hard provider rejections are not.
type Error struct {
	msg       string
	retryable bool
}

func (e *Error) Error() string { return e.msg }

// Retryable reports whether a requeue may succeed.
func (e *Error) Retryable() bool { return e.retryable }

// NewError returns a non-retryable generation error.
func NewError(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// NewRetryableError returns a retryable generation error.
func NewRetryableError(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), retryable: true}
}

// IsRetryable classifies an error from a Generate call. Tagged generation
// errors and timeouts decide for themselves; anything unclassified is
// treated as transient.
func IsRetryable(err error) bool {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
