package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxaccount/media-platform/internal/domain"
)

func TestRemoteGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.MediaType != "image" {
			t.Fatalf("unexpected media type: %s", payload.MediaType)
		}
		if payload.Prompt != "a lighthouse at dusk" {
			t.Fatalf("prompt mismatch: %s", payload.Prompt)
		}
		_ = json.NewEncoder(w).Encode(remoteResponse{Assets: []remoteAsset{{
			FileName:   "out.png",
			MIMEType:   "image/png",
			Resolution: "1024x1024",
			Data:       base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		}}})
	}))
	defer ts.Close()

	g := NewRemote(RemoteOptions{APIKey: "test-key", BaseURL: ts.URL})
	assets, err := g.Generate(context.Background(), GenerateRequest{
		RequestID: "req-1",
		Type:      domain.MediaTypeImage,
		Prompt:    "a lighthouse at dusk",
		Quality:   domain.MediaQualityStandard,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("unexpected asset count: %d", len(assets))
	}
	if string(assets[0].Data) != "png-bytes" {
		t.Fatalf("unexpected asset data: %q", assets[0].Data)
	}
	if assets[0].FileName != "out.png" {
		t.Fatalf("unexpected file name: %s", assets[0].FileName)
	}
}

func TestRemoteGenerateMissingKey(t *testing.T) {
	g := NewRemote(RemoteOptions{BaseURL: "http://localhost:1"})
	_, err := g.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	if err == nil {
		t.Fatalf("expected error when api key missing")
	}
	if IsRetryable(err) {
		t.Fatalf("missing key must not be retryable")
	}
}

func TestRemoteGenerateClassifiesFailures(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"overloaded", http.StatusServiceUnavailable, `{"message":"at capacity"}`, true},
		{"throttled", http.StatusTooManyRequests, `{}`, true},
		{"rejected prompt", http.StatusUnprocessableEntity, `{"message":"prompt blocked","code":"policy"}`, false},
		{"bad request", http.StatusBadRequest, `{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			g := NewRemote(RemoteOptions{APIKey: "test-key", BaseURL: ts.URL})
			_, err := g.Generate(context.Background(), GenerateRequest{Prompt: "p"})
			if err == nil {
				t.Fatalf("expected error for http %d", tc.status)
			}
			if got := IsRetryable(err); got != tc.retryable {
				t.Fatalf("retryable = %v, want %v (err: %v)", got, tc.retryable, err)
			}
		})
	}
}

func TestRemoteGenerateEmptyAssets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(remoteResponse{})
	}))
	defer ts.Close()

	g := NewRemote(RemoteOptions{APIKey: "test-key", BaseURL: ts.URL})
	_, err := g.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	if err == nil {
		t.Fatalf("expected error for empty asset list")
	}
	if IsRetryable(err) {
		t.Fatalf("empty asset list must not be retryable")
	}
}
