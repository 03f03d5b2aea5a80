package domain

import "time"

// AssetStatus enumerates media asset states.
type AssetStatus string

const (
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusReady      AssetStatus = "ready"
	AssetStatusArchived   AssetStatus = "archived"
	AssetStatusDeleted    AssetStatus = "deleted"
	AssetStatusCorrupted  AssetStatus = "corrupted"
)

// MediaAsset represents a generated artifact belonging to a request.
type MediaAsset struct {
	ID             string
	RequestID      string
	UserID         string
	FilePath       string
	FileName       string
	FileSize       int64
	MIMEType       string
	Resolution     string
	Status         AssetStatus
	DownloadCount  int
	LastAccessedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
