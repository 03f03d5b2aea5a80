package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxaccount/media-platform/internal/domain"
)

func newTestRedisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, DefaultQueueName)
}

func TestRedisQueueRoundTrip(t *testing.T) {
	q := newTestRedisQueue(t)
	ctx := context.Background()

	first := Job{
		RequestID:  "req-1",
		OwnerID:    "alice",
		MediaType:  domain.MediaTypeImage,
		Prompt:     "a lighthouse at dusk",
		Quality:    domain.MediaQualityStandard,
		Attempt:    0,
		MaxRetries: domain.MaxRetries,
	}
	second := Job{RequestID: "req-2", OwnerID: "alice", MediaType: domain.MediaTypeVideo, Prompt: "waves"}

	require.NoError(t, q.Publish(ctx, first))
	require.NoError(t, q.Publish(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.RequestID, got.RequestID)
	assert.Equal(t, domain.MediaTypeVideo, got.MediaType)
}

func TestRedisQueueConsumeStopsOnCancel(t *testing.T) {
	q := newTestRedisQueue(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Consume(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consume did not return after cancellation")
	}
}
