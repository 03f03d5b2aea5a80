package domain

import "time"

// AnalyticsDaily stores aggregated platform metrics for a specific day.
type AnalyticsDaily struct {
	Day             time.Time
	Visitors        int
	AIRequests      int
	ImagesGenerated int
	VideosGenerated int
	RequestSuccess  int
	RequestFail     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Analytics counter keys understood by AnalyticsRepository.IncrementCounters.
const (
	CounterVisitors        = "visitors"
	CounterAIRequests      = "ai_requests"
	CounterImagesGenerated = "images_generated"
	CounterVideosGenerated = "videos_generated"
	CounterRequestSuccess  = "request_success"
	CounterRequestFail     = "request_fail"
)
