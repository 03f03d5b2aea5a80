package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// RemoteOptions configures the HTTP generation backend.
type RemoteOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Remote calls an external media generation service over HTTP. Transport
// faults and backend overload are surfaced as retryable errors so the
// worker can requeue; rejected prompts fail permanently.
type Remote struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewRemote constructs a remote generator client.
func NewRemote(opts RemoteOptions) *Remote {
	base := strings.TrimRight(opts.BaseURL, "/")
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Remote{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
	}
}

type remoteRequest struct {
	RequestID string `json:"request_id"`
	MediaType string `json:"media_type"`
	Prompt    string `json:"prompt"`
	Quality   string `json:"quality"`
}

type remoteAsset struct {
	FileName   string `json:"file_name"`
	MIMEType   string `json:"mime_type"`
	Resolution string `json:"resolution"`
	Data       string `json:"data"`
}

type remoteResponse struct {
	Assets  []remoteAsset `json:"assets"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
}

func (g *Remote) Generate(ctx context.Context, req GenerateRequest) ([]GeneratedAsset, error) {
	if g.token == "" {
		return nil, NewError("remote: API key is missing")
	}
	body, err := json.Marshal(remoteRequest{
		RequestID: req.RequestID,
		MediaType: string(req.Type),
		Prompt:    req.Prompt,
		Quality:   string(req.Quality),
	})
	if err != nil {
		return nil, NewError("remote: encode request: %v", err)
	}

	endpoint := g.baseURL + "/v1/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError("remote: build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewRetryableError("remote: request failed: %v", err)
	}
	defer resp.Body.Close()

	var out remoteResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, NewRetryableError("remote: backend unavailable: http %d %s", resp.StatusCode, out.Message)
	case resp.StatusCode >= http.StatusBadRequest:
		if out.Message != "" {
			return nil, NewError("remote: rejected: %s (%s)", out.Message, out.Code)
		}
		return nil, NewError("remote: rejected: http %d", resp.StatusCode)
	case decodeErr != nil:
		return nil, NewRetryableError("remote: decode response: %v", decodeErr)
	case len(out.Assets) == 0:
		return nil, NewError("remote: backend returned no assets")
	}

	assets := make([]GeneratedAsset, 0, len(out.Assets))
	for _, a := range out.Assets {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return nil, NewError("remote: invalid asset payload for %s: %v", a.FileName, err)
		}
		assets = append(assets, GeneratedAsset{
			FileName:   a.FileName,
			MIMEType:   a.MIMEType,
			Resolution: a.Resolution,
			Data:       data,
		})
	}
	return assets, nil
}
