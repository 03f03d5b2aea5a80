package queue

import "context"

// Memory is a channel-backed queue for tests and stub deployments.
type Memory struct {
	jobs chan Job
}

// NewMemory constructs an in-memory queue with the given buffer size.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 64
	}
	return &Memory{jobs: make(chan Job, size)}
}

// Publish enqueues the job, blocking if the buffer is full.
func (m *Memory) Publish(ctx context.Context, job Job) error {
	select {
	case m.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a job is available or ctx is done.
func (m *Memory) Consume(ctx context.Context) (Job, error) {
	select {
	case job := <-m.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// TryConsume pops a job without blocking, returning ErrEmpty when idle.
func (m *Memory) TryConsume() (Job, error) {
	select {
	case job := <-m.jobs:
		return job, nil
	default:
		return Job{}, ErrEmpty
	}
}

// Len reports the number of buffered jobs.
func (m *Memory) Len() int { return len(m.jobs) }
