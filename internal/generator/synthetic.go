package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxaccount/media-platform/internal/domain"
)

// Synthetic produces placeholder assets without calling a real backend. It
// is used in development and stub deployments where no generation service
// is configured.
type Synthetic struct {
	delay  time.Duration
	logger zerolog.Logger
}

// NewSynthetic constructs a synthetic generator with the given simulated
// generation delay.
func NewSynthetic(delay time.Duration, logger zerolog.Logger) *Synthetic {
	return &Synthetic{delay: delay, logger: logger}
}

// Generate waits for the configured delay and returns a single placeholder
// asset. Cancellation pre-empts the wait.
func (g *Synthetic) Generate(ctx context.Context, req GenerateRequest) ([]GeneratedAsset, error) {
	g.logger.Info().
		Str("request_id", req.RequestID).
		Str("media_type", string(req.Type)).
		Str("quality", string(req.Quality)).
		Msg("generator: synthetic generation started")

	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	mime, ext, resolution := assetShape(req.Type)
	data := []byte(fmt.Sprintf("synthetic %s asset for request %s\nprompt: %s\n", req.Type, req.RequestID, req.Prompt))
	return []GeneratedAsset{{
		FileName:   fmt.Sprintf("%s-placeholder%s", req.Type, ext),
		MIMEType:   mime,
		Resolution: resolution,
		Data:       data,
	}}, nil
}

func assetShape(t domain.MediaType) (mime, ext, resolution string) {
	switch t {
	case domain.MediaTypeVideo:
		return "video/mp4", ".mp4", "1920x1080"
	case domain.MediaTypeAudio:
		return "audio/mpeg", ".mp3", ""
	default:
		return "image/jpeg", ".jpg", "1024x1024"
	}
}
