package lifecycle

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxaccount/media-platform/internal/adapter/repo/memory"
	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/queue"
)

type engineFixture struct {
	engine   *Engine
	requests *memory.RequestRepository
	users    *memory.UserRepository
	jobs     *queue.Memory
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	requests := memory.NewRequestRepository()
	users := memory.NewUserRepository()
	jobs := queue.NewMemory(64)
	return &engineFixture{
		engine:   NewEngine(requests, users, jobs, zerolog.Nop()),
		requests: requests,
		users:    users,
		jobs:     jobs,
	}
}

func (f *engineFixture) seedUser(t *testing.T, id string, tier domain.SubscriptionTier) {
	t.Helper()
	err := f.users.Create(context.Background(), &domain.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  "Test User",
		Tier:  tier,
	})
	require.NoError(t, err)
}

func (f *engineFixture) create(t *testing.T, ownerID string) *domain.MediaRequest {
	t.Helper()
	req, err := f.engine.Create(context.Background(), ownerID, CreateInput{
		Type:   domain.MediaTypeImage,
		Prompt: "a lighthouse at dusk",
	})
	require.NoError(t, err)
	return req
}

// seedFailed drives a request through pending -> processing -> failed.
func (f *engineFixture) seedFailed(t *testing.T, ownerID, message string) *domain.MediaRequest {
	t.Helper()
	req := f.create(t, ownerID)
	_, err := f.engine.BeginProcessing(context.Background(), req.ID)
	require.NoError(t, err)
	failed, err := f.engine.FailProcessing(context.Background(), req.ID, message)
	require.NoError(t, err)
	return failed
}

func TestCreateDefaults(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)

	req, err := f.engine.Create(context.Background(), "alice", CreateInput{
		Type:   domain.MediaTypeImage,
		Prompt: "a lighthouse at dusk",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, domain.MediaQualityStandard, req.Quality)
	assert.Equal(t, domain.DefaultPriority, req.Priority)
	assert.Equal(t, domain.MediaQualityStandard.EstimatedCost(), req.EstimatedCost)
	assert.Equal(t, 0, req.RetryCount)
	assert.NotEmpty(t, req.ID)

	job, err := f.jobs.TryConsume()
	require.NoError(t, err)
	assert.Equal(t, req.ID, job.RequestID)
	assert.Equal(t, 0, job.Attempt)
	assert.Equal(t, domain.MaxRetries, job.MaxRetries)
}

func TestCreateValidation(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"unknown media type", CreateInput{Type: "hologram", Prompt: "p"}},
		{"unknown quality", CreateInput{Type: domain.MediaTypeImage, Prompt: "p", Quality: "cinematic"}},
		{"empty prompt", CreateInput{Type: domain.MediaTypeImage}},
		{"priority too high", CreateInput{Type: domain.MediaTypeImage, Prompt: "p", Priority: 11}},
		{"negative priority", CreateInput{Type: domain.MediaTypeImage, Prompt: "p", Priority: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Create(context.Background(), "alice", tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateTierGating(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "free-user", domain.TierFree)
	f.seedUser(t, "premium-user", domain.TierPremium)
	f.seedUser(t, "enterprise-user", domain.TierEnterprise)

	cases := []struct {
		name    string
		owner   string
		quality domain.MediaQuality
		wantErr error
	}{
		{"free may use draft", "free-user", domain.MediaQualityDraft, nil},
		{"free may use standard", "free-user", domain.MediaQualityStandard, nil},
		{"free blocked from premium", "free-user", domain.MediaQualityPremium, domain.ErrSubscriptionRequired},
		{"free blocked from ultra", "free-user", domain.MediaQualityUltra, domain.ErrSubscriptionRequired},
		{"premium may use premium", "premium-user", domain.MediaQualityPremium, nil},
		{"premium blocked from ultra", "premium-user", domain.MediaQualityUltra, domain.ErrSubscriptionRequired},
		{"enterprise may use ultra", "enterprise-user", domain.MediaQualityUltra, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Create(context.Background(), tc.owner, CreateInput{
				Type:    domain.MediaTypeImage,
				Prompt:  "p",
				Quality: tc.quality,
			})
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCreateSuspendedAccount(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "banned", domain.TierSuspended)

	_, err := f.engine.Create(context.Background(), "banned", CreateInput{
		Type:   domain.MediaTypeImage,
		Prompt: "p",
	})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Equal(t, 0, f.jobs.Len())
}

func TestCreateDailyLimit(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)

	limit := domain.TierFree.DailyLimit()
	for i := 0; i < limit; i++ {
		f.create(t, "alice")
	}

	_, err := f.engine.Create(context.Background(), "alice", CreateInput{
		Type:   domain.MediaTypeImage,
		Prompt: "one over the line",
	})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "daily limit of 5")

	// Cancelled and failed requests still count against the day.
	assert.Equal(t, limit, f.jobs.Len())
}

func TestDailyLimitResetsAtMidnightUTC(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)

	day1 := time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return day1 }
	f.requests.SetClock(func() time.Time { return day1 })
	for i := 0; i < domain.TierFree.DailyLimit(); i++ {
		f.create(t, "alice")
	}
	_, err := f.engine.Create(context.Background(), "alice", CreateInput{Type: domain.MediaTypeImage, Prompt: "p"})
	require.ErrorIs(t, err, domain.ErrRateLimited)

	day2 := time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return day2 }
	f.requests.SetClock(func() time.Time { return day2 })
	_, err = f.engine.Create(context.Background(), "alice", CreateInput{Type: domain.MediaTypeImage, Prompt: "p"})
	assert.NoError(t, err)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)
	f.seedUser(t, "mallory", domain.TierFree)
	req := f.create(t, "alice")

	_, err := f.engine.Get(context.Background(), "mallory", req.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = f.engine.Get(context.Background(), "alice", "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierFree)

	t.Run("pending request", func(t *testing.T) {
		req := f.create(t, "alice")
		cancelled, err := f.engine.Cancel(context.Background(), "alice", req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCancelled, cancelled.Status)
	})

	t.Run("processing request", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)
		cancelled, err := f.engine.Cancel(context.Background(), "alice", req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCancelled, cancelled.Status)
	})

	t.Run("completed request conflicts", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)
		_, err = f.engine.CompleteProcessing(context.Background(), req.ID, time.Second)
		require.NoError(t, err)

		_, err = f.engine.Cancel(context.Background(), "alice", req.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "completed")
	})

	t.Run("cancelled request conflicts", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.Cancel(context.Background(), "alice", req.ID)
		require.NoError(t, err)
		_, err = f.engine.Cancel(context.Background(), "alice", req.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestRetry(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierPremium)

	t.Run("failed request is requeued", func(t *testing.T) {
		req := f.seedFailed(t, "alice", "backend exploded")
		for f.jobs.Len() > 0 {
			_, _ = f.jobs.TryConsume()
		}

		retried, err := f.engine.Retry(context.Background(), "alice", req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, retried.Status)
		assert.Equal(t, 1, retried.RetryCount)
		assert.Empty(t, retried.ErrorMessage)

		job, err := f.jobs.TryConsume()
		require.NoError(t, err)
		assert.Equal(t, req.ID, job.RequestID)
		assert.Equal(t, 1, job.Attempt)
	})

	t.Run("non-failed request conflicts", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.Retry(context.Background(), "alice", req.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("retry limit is enforced", func(t *testing.T) {
		req := f.seedFailed(t, "alice", "backend exploded")
		for i := 0; i < domain.MaxRetries; i++ {
			_, err := f.engine.Retry(context.Background(), "alice", req.ID)
			require.NoError(t, err)
			_, err = f.engine.BeginProcessing(context.Background(), req.ID)
			require.NoError(t, err)
			_, err = f.engine.FailProcessing(context.Background(), req.ID, "still broken")
			require.NoError(t, err)
		}

		_, err := f.engine.Retry(context.Background(), "alice", req.ID)
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "maximum retry limit reached")
	})

	t.Run("foreign caller is rejected", func(t *testing.T) {
		f.seedUser(t, "mallory", domain.TierFree)
		req := f.seedFailed(t, "alice", "boom")
		_, err := f.engine.Retry(context.Background(), "mallory", req.ID)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})
}

func TestWorkerTransitions(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierEnterprise)

	t.Run("begin processing claims once", func(t *testing.T) {
		req := f.create(t, "alice")
		claimed, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusProcessing, claimed.Status)

		_, err = f.engine.BeginProcessing(context.Background(), req.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("complete records duration", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)

		done, err := f.engine.CompleteProcessing(context.Background(), req.ID, 2300*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCompleted, done.Status)
		assert.Equal(t, int64(2300), done.ProcessingTimeMS)
		require.NotNil(t, done.CompletedAt)
	})

	t.Run("complete after cancel conflicts", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)
		_, err = f.engine.Cancel(context.Background(), "alice", req.ID)
		require.NoError(t, err)

		_, err = f.engine.CompleteProcessing(context.Background(), req.ID, time.Second)
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := f.engine.Get(context.Background(), "alice", req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCancelled, got.Status)
	})

	t.Run("fail truncates long error text", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)

		long := strings.Repeat("x", MaxStoredErrorLen+250)
		failed, err := f.engine.FailProcessing(context.Background(), req.ID, long)
		require.NoError(t, err)
		assert.Len(t, failed.ErrorMessage, MaxStoredErrorLen)
	})

	t.Run("release keeps retry count", func(t *testing.T) {
		req := f.create(t, "alice")
		_, err := f.engine.BeginProcessing(context.Background(), req.ID)
		require.NoError(t, err)

		released, err := f.engine.ReleaseForRetry(context.Background(), req.ID, "transient backend fault")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, released.Status)
		assert.Equal(t, 0, released.RetryCount)
		assert.Equal(t, "transient backend fault", released.ErrorMessage)
	})
}

func TestConcurrentClaimHasOneWinner(t *testing.T) {
	f := newEngineFixture(t)
	f.seedUser(t, "alice", domain.TierEnterprise)
	req := f.create(t, "alice")

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.BeginProcessing(context.Background(), req.ID); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	assert.Equal(t, 1, winners)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("", 5))

	// A cut landing inside a multi-byte rune backs up to the boundary.
	assert.Equal(t, "ab", Truncate("abécd", 3))
	assert.Equal(t, "abé", Truncate("abécd", 4))
	assert.True(t, utf8.ValidString(Truncate("日本語", 4)))
	assert.Equal(t, "日", Truncate("日本語", 4))
}
