package queue

import (
	"context"
	"errors"

	"github.com/luxaccount/media-platform/internal/domain"
)

// DefaultQueueName is the list jobs are published to.
const DefaultQueueName = "media_generation"

// ErrEmpty is returned by non-blocking consume paths when no job is ready.
var ErrEmpty = errors.New("queue: no job available")

// Job is the message exchanged between the API and the worker. Attempt
// counts deliveries of this logical job and bounds implicit requeues; the
// persisted retry counter on the request only tracks explicit user
// retries.
type Job struct {
	RequestID  string              `json:"request_id"`
	OwnerID    string              `json:"owner_id"`
	MediaType  domain.MediaType    `json:"media_type"`
	Prompt     string              `json:"prompt"`
	Quality    domain.MediaQuality `json:"quality"`
	Attempt    int                 `json:"attempt"`
	MaxRetries int                 `json:"max_retries"`
}

// Publisher enqueues generation jobs. Delivery is at-least-once; consumers
// must tolerate duplicates.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// Consumer dequeues generation jobs. Consume blocks until a job arrives or
// the context is done.
type Consumer interface {
	Consume(ctx context.Context) (Job, error)
}
