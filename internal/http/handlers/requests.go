package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/lifecycle"
	"github.com/luxaccount/media-platform/pkg/zip"
)

type createRequestPayload struct {
	MediaType   string          `json:"media_type" validate:"required"`
	Prompt      string          `json:"prompt" validate:"required,max=2000"`
	Parameters  json.RawMessage `json:"parameters"`
	StylePreset string          `json:"style_preset" validate:"omitempty,max=100"`
	Resolution  string          `json:"resolution" validate:"omitempty,max=20"`
	Quality     string          `json:"quality"`
	Priority    int             `json:"priority" validate:"omitempty,min=1,max=10"`
}

type requestResponse struct {
	ID               string          `json:"id"`
	MediaType        string          `json:"media_type"`
	Prompt           string          `json:"prompt"`
	Parameters       json.RawMessage `json:"parameters,omitempty"`
	StylePreset      string          `json:"style_preset,omitempty"`
	Resolution       string          `json:"resolution,omitempty"`
	Quality          string          `json:"quality"`
	Priority         int             `json:"priority"`
	EstimatedCost    float64         `json:"estimated_cost"`
	Status           string          `json:"status"`
	RetryCount       int             `json:"retry_count"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	ProcessingTimeMS int64           `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

func toRequestResponse(req *domain.MediaRequest) requestResponse {
	return requestResponse{
		ID:               req.ID,
		MediaType:        string(req.Type),
		Prompt:           req.Prompt,
		Parameters:       json.RawMessage(req.Parameters),
		StylePreset:      req.StylePreset,
		Resolution:       req.Resolution,
		Quality:          string(req.Quality),
		Priority:         req.Priority,
		EstimatedCost:    req.EstimatedCost,
		Status:           string(req.Status),
		RetryCount:       req.RetryCount,
		ErrorMessage:     req.ErrorMessage,
		ProcessingTimeMS: req.ProcessingTimeMS,
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
		CompletedAt:      req.CompletedAt,
	}
}

func (a *App) RequestCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequestPayload
	if !a.decode(w, r, &payload) {
		return
	}
	req, err := a.Engine.Create(r.Context(), a.currentUserID(r), lifecycle.CreateInput{
		Type:        domain.MediaType(payload.MediaType),
		Prompt:      payload.Prompt,
		Parameters:  payload.Parameters,
		StylePreset: payload.StylePreset,
		Resolution:  payload.Resolution,
		Quality:     domain.MediaQuality(payload.Quality),
		Priority:    payload.Priority,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.track(r, map[string]int{domain.CounterAIRequests: 1})
	a.json(w, http.StatusCreated, toRequestResponse(req))
}

func (a *App) RequestList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RequestFilter{
		Status: domain.RequestStatus(q.Get("status")),
		Type:   domain.MediaType(q.Get("media_type")),
		Limit:  queryInt(q.Get("limit"), 20),
		Offset: queryInt(q.Get("offset"), 0),
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	items, total, err := a.Engine.List(r.Context(), a.currentUserID(r), filter)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	out := make([]requestResponse, 0, len(items))
	for i := range items {
		out = append(out, toRequestResponse(&items[i]))
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":  out,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (a *App) RequestGet(w http.ResponseWriter, r *http.Request) {
	req, err := a.Engine.Get(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toRequestResponse(req))
}

func (a *App) RequestCancel(w http.ResponseWriter, r *http.Request) {
	req, err := a.Engine.Cancel(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toRequestResponse(req))
}

func (a *App) RequestRetry(w http.ResponseWriter, r *http.Request) {
	req, err := a.Engine.Retry(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toRequestResponse(req))
}

type assetResponse struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	MIMEType      string    `json:"mime_type"`
	Resolution    string    `json:"resolution,omitempty"`
	Status        string    `json:"status"`
	DownloadCount int       `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *App) RequestAssets(w http.ResponseWriter, r *http.Request) {
	req, err := a.Engine.Get(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	assets, err := a.Assets.ListByRequestID(r.Context(), req.ID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]assetResponse, 0, len(assets))
	for _, asset := range assets {
		items = append(items, assetResponse{
			ID:            asset.ID,
			FileName:      asset.FileName,
			FileSize:      asset.FileSize,
			MIMEType:      asset.MIMEType,
			Resolution:    asset.Resolution,
			Status:        string(asset.Status),
			DownloadCount: asset.DownloadCount,
			CreatedAt:     asset.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// RequestDownload streams all ready assets of a completed request as a
// single zip archive.
func (a *App) RequestDownload(w http.ResponseWriter, r *http.Request) {
	req, err := a.Engine.Get(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if req.Status != domain.RequestStatusCompleted {
		a.error(w, http.StatusConflict, "conflict", fmt.Sprintf("request is %s, not completed", req.Status))
		return
	}
	assets, err := a.Assets.ListByRequestID(r.Context(), req.ID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	var entries []zip.Asset
	for _, asset := range assets {
		if asset.Status != domain.AssetStatusReady {
			continue
		}
		data, err := a.Store.Read(r.Context(), asset.FilePath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("asset_id", asset.ID).Msg("handlers: asset file missing, skipped")
			continue
		}
		entries = append(entries, zip.Asset{FileName: asset.FileName, MIME: asset.MIMEType, Data: data})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no downloadable assets for this request")
		return
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=request-%s.zip", req.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
