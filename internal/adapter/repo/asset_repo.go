package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxaccount/media-platform/internal/domain"
)

// AssetRepositoryPG implements domain.AssetRepository using PostgreSQL.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

// SaveAll persists a list of generated assets.
func (r *AssetRepositoryPG) SaveAll(ctx context.Context, requestID string, assets []domain.MediaAsset) error {
	if len(assets) == 0 {
		return nil
	}

	query := `
INSERT INTO media_assets (id, request_id, user_id, file_path, file_name, file_size, mime_type, resolution, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	for _, asset := range assets {
		a := asset
		if _, err := r.pool.Exec(ctx, query, a.ID, requestID, a.UserID, a.FilePath, a.FileName, a.FileSize, a.MIMEType, a.Resolution, a.Status); err != nil {
			return err
		}
	}
	return nil
}

// ListByRequestID returns all assets belonging to the request.
func (r *AssetRepositoryPG) ListByRequestID(ctx context.Context, requestID string) ([]domain.MediaAsset, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, request_id, user_id, file_path, file_name, file_size, mime_type, resolution, status, download_count, last_accessed_at, created_at, updated_at
FROM media_assets
WHERE request_id = $1
ORDER BY created_at ASC;
`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.MediaAsset
	for rows.Next() {
		var asset domain.MediaAsset
		if err := rows.Scan(
			&asset.ID, &asset.RequestID, &asset.UserID, &asset.FilePath, &asset.FileName,
			&asset.FileSize, &asset.MIMEType, &asset.Resolution, &asset.Status,
			&asset.DownloadCount, &asset.LastAccessedAt, &asset.CreatedAt, &asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}
