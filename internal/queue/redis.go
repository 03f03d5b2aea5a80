package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const popTimeout = 2 * time.Second

// RedisQueue implements Publisher and Consumer on a Redis list. LPUSH plus
// BRPOP gives FIFO delivery; a job popped by a crashed worker is lost,
// which the at-least-once contract tolerates because the API can requeue
// via explicit retry.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue constructs a queue on the given Redis client and name.
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &RedisQueue{client: client, key: "queue:" + name}
}

// Publish appends the job to the queue list.
func (q *RedisQueue) Publish(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	return nil
}

// Consume blocks until a job is available or ctx is done. The pop uses a
// short timeout so cancellation is observed promptly.
func (q *RedisQueue) Consume(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		res, err := q.client.BRPop(ctx, popTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return Job{}, fmt.Errorf("queue: consume: %w", err)
		}
		// BRPOP returns [key, value].
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("queue: decode job: %w", err)
		}
		return job, nil
	}
}

// Len reports the number of queued jobs.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
