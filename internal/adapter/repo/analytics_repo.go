package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxaccount/media-platform/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository using
// PostgreSQL.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// IncrementCounters upserts metrics for the provided day.
func (r *AnalyticsRepositoryPG) IncrementCounters(ctx context.Context, day string, counters map[string]int) error {
	query := `
INSERT INTO analytics_daily (
    day, visitors, ai_requests, images_generated, videos_generated, request_success, request_fail
) VALUES (
    $1, $2, $3, $4, $5, $6, $7
) ON CONFLICT (day) DO UPDATE SET
    visitors = analytics_daily.visitors + EXCLUDED.visitors,
    ai_requests = analytics_daily.ai_requests + EXCLUDED.ai_requests,
    images_generated = analytics_daily.images_generated + EXCLUDED.images_generated,
    videos_generated = analytics_daily.videos_generated + EXCLUDED.videos_generated,
    request_success = analytics_daily.request_success + EXCLUDED.request_success,
    request_fail = analytics_daily.request_fail + EXCLUDED.request_fail,
    updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, query,
		day,
		counters[domain.CounterVisitors],
		counters[domain.CounterAIRequests],
		counters[domain.CounterImagesGenerated],
		counters[domain.CounterVideosGenerated],
		counters[domain.CounterRequestSuccess],
		counters[domain.CounterRequestFail],
	)
	return err
}

// GetSummary returns the most recent day's counters.
func (r *AnalyticsRepositoryPG) GetSummary(ctx context.Context) (*domain.AnalyticsDaily, error) {
	row := r.pool.QueryRow(ctx, `
SELECT day, visitors, ai_requests, images_generated, videos_generated, request_success, request_fail, created_at, updated_at
FROM analytics_daily
ORDER BY day DESC
LIMIT 1;
`)
	var summary domain.AnalyticsDaily
	if err := row.Scan(
		&summary.Day, &summary.Visitors, &summary.AIRequests,
		&summary.ImagesGenerated, &summary.VideosGenerated,
		&summary.RequestSuccess, &summary.RequestFail,
		&summary.CreatedAt, &summary.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}
