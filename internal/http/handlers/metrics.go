package handlers

import (
	"net/http"
)

// MetricsDashboard returns today's aggregated platform counters.
func (a *App) MetricsDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Analytics.GetSummary(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"day":              summary.Day.Format("2006-01-02"),
		"visitors":         summary.Visitors,
		"ai_requests":      summary.AIRequests,
		"images_generated": summary.ImagesGenerated,
		"videos_generated": summary.VideosGenerated,
		"request_success":  summary.RequestSuccess,
		"request_fail":     summary.RequestFail,
	})
}
