package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxaccount/media-platform/internal/domain"
)

const requestColumns = `id, owner_id, media_type, prompt, parameters, style_preset, resolution, quality, priority, estimated_cost, status, retry_count, error_message, processing_time_ms, created_at, updated_at, completed_at`

// RequestRepositoryPG implements domain.RequestRepository backed by
// PostgreSQL. Status transitions are guarded in SQL: the UPDATE carries
// the expected current status in its WHERE clause, so two racing
// transitions on one row resolve to a single winner.
type RequestRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new request repository.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepositoryPG {
	return &RequestRepositoryPG{pool: pool}
}

// Create inserts a new media request record.
func (r *RequestRepositoryPG) Create(ctx context.Context, req *domain.MediaRequest) error {
	query := `
INSERT INTO media_requests (id, owner_id, media_type, prompt, parameters, style_preset, resolution, quality, priority, estimated_cost, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`
	_, err := r.pool.Exec(ctx, query,
		req.ID,
		req.OwnerID,
		req.Type,
		req.Prompt,
		nullableBytes(req.Parameters),
		req.StylePreset,
		req.Resolution,
		req.Quality,
		req.Priority,
		req.EstimatedCost,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert media request: %w", err)
	}
	return nil
}

// GetByID fetches a request by its identifier.
func (r *RequestRepositoryPG) GetByID(ctx context.Context, id string) (*domain.MediaRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM media_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// ListByOwner returns the owner's requests with optional status and type
// filters, newest first, plus the unpaginated total.
func (r *RequestRepositoryPG) ListByOwner(ctx context.Context, ownerID string, filter domain.RequestFilter) ([]domain.MediaRequest, int, error) {
	query := `
SELECT ` + requestColumns + `, COUNT(*) OVER () AS total
FROM media_requests
WHERE owner_id = $1
  AND ($2 = '' OR status = $2)
  AND ($3 = '' OR media_type = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5;
`
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, query, ownerID, string(filter.Status), string(filter.Type), limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		requests []domain.MediaRequest
		total    int
	)
	for rows.Next() {
		var req domain.MediaRequest
		if err := rows.Scan(
			&req.ID, &req.OwnerID, &req.Type, &req.Prompt, &req.Parameters,
			&req.StylePreset, &req.Resolution, &req.Quality, &req.Priority,
			&req.EstimatedCost, &req.Status, &req.RetryCount, &req.ErrorMessage,
			&req.ProcessingTimeMS, &req.CreatedAt, &req.UpdatedAt, &req.CompletedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateStatus performs the compare-and-swap transition. When the guarded
// UPDATE matches no row the current status is re-read to distinguish a
// missing request from a lost race.
func (r *RequestRepositoryPG) UpdateStatus(ctx context.Context, id string, expected domain.RequestStatus, update domain.StatusUpdate) (*domain.MediaRequest, error) {
	query := `
UPDATE media_requests
SET status = $3,
    updated_at = NOW(),
    error_message = CASE WHEN $4::boolean THEN '' ELSE COALESCE($5, error_message) END,
    retry_count = COALESCE($6, retry_count),
    processing_time_ms = COALESCE($7, processing_time_ms),
    completed_at = COALESCE($8, completed_at)
WHERE id = $1 AND status = $2
RETURNING ` + requestColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		id,
		expected,
		update.Status,
		update.ClearError,
		update.ErrorMessage,
		update.RetryCount,
		update.ProcessingTimeMS,
		update.CompletedAt,
	)
	req, err := scanRequest(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var current domain.RequestStatus
	checkErr := r.pool.QueryRow(ctx, `SELECT status FROM media_requests WHERE id = $1`, id).Scan(&current)
	if checkErr != nil {
		if errors.Is(checkErr, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, checkErr
	}
	return nil, fmt.Errorf("status is %s, expected %s: %w", current, expected, domain.ErrConflict)
}

// CountForOwnerSince counts the owner's requests created at or after since.
func (r *RequestRepositoryPG) CountForOwnerSince(ctx context.Context, ownerID string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM media_requests
WHERE owner_id = $1
  AND created_at >= $2;
`, ownerID, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanRequest(row pgx.Row) (*domain.MediaRequest, error) {
	var req domain.MediaRequest
	if err := row.Scan(
		&req.ID, &req.OwnerID, &req.Type, &req.Prompt, &req.Parameters,
		&req.StylePreset, &req.Resolution, &req.Quality, &req.Priority,
		&req.EstimatedCost, &req.Status, &req.RetryCount, &req.ErrorMessage,
		&req.ProcessingTimeMS, &req.CreatedAt, &req.UpdatedAt, &req.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
