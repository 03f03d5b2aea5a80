// Package worker runs the queue-driven processing loop: it claims pending
// requests, invokes the generation backend, and records the outcome
// through the lifecycle engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/generator"
	"github.com/luxaccount/media-platform/internal/lifecycle"
	"github.com/luxaccount/media-platform/internal/queue"
	"github.com/luxaccount/media-platform/internal/storage"
)

// Config bundles the worker's collaborators.
type Config struct {
	Engine    *lifecycle.Engine
	Consumer  queue.Consumer
	Publisher queue.Publisher
	Generator generator.Generator
	Assets    domain.AssetRepository
	Analytics domain.AnalyticsRepository
	Store     *storage.FileStore
	Logger    zerolog.Logger
	// GenTimeout bounds a single generation call.
	GenTimeout time.Duration
}

// Worker consumes generation jobs and drives request transitions.
type Worker struct {
	engine     *lifecycle.Engine
	consumer   queue.Consumer
	publisher  queue.Publisher
	generator  generator.Generator
	assets     domain.AssetRepository
	analytics  domain.AnalyticsRepository
	store      *storage.FileStore
	logger     zerolog.Logger
	genTimeout time.Duration
}

// New constructs a worker from the config.
func New(cfg Config) *Worker {
	timeout := cfg.GenTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Worker{
		engine:     cfg.Engine,
		consumer:   cfg.Consumer,
		publisher:  cfg.Publisher,
		generator:  cfg.Generator,
		assets:     cfg.Assets,
		analytics:  cfg.Analytics,
		store:      cfg.Store,
		logger:     cfg.Logger,
		genTimeout: timeout,
	}
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		job, err := w.consumer.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("worker: consume failed")
			continue
		}
		w.HandleJob(ctx, job)
	}
}

// HandleJob processes one delivered job. Queue delivery is at-least-once,
// so the pending-to-processing swap is the idempotency gate: a duplicate
// delivery loses the swap and is dropped without invoking generation.
func (w *Worker) HandleJob(ctx context.Context, job queue.Job) {
	log := w.logger.With().Str("request_id", job.RequestID).Int("attempt", job.Attempt).Logger()

	req, err := w.engine.BeginProcessing(ctx, job.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			log.Info().Msg("worker: request no longer pending, dropping job")
		case errors.Is(err, domain.ErrNotFound):
			log.Warn().Msg("worker: request not found, dropping job")
		default:
			log.Error().Err(err).Msg("worker: claim failed")
		}
		return
	}
	log.Info().Str("media_type", string(job.MediaType)).Msg("worker: picked job")

	genCtx, cancel := context.WithTimeout(ctx, w.genTimeout)
	defer cancel()

	started := time.Now()
	generated, genErr := w.generator.Generate(genCtx, generator.GenerateRequest{
		RequestID: req.ID,
		OwnerID:   req.OwnerID,
		Type:      req.Type,
		Prompt:    req.Prompt,
		Quality:   req.Quality,
	})
	if genErr != nil {
		w.handleFailure(ctx, log, job, genErr)
		return
	}

	// Win the completion swap before touching storage: if the owner
	// cancelled while generation ran, the terminal status holds and the
	// result is discarded without ever becoming visible as an asset.
	if _, err := w.engine.CompleteProcessing(ctx, req.ID, time.Since(started)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info().Msg("worker: request cancelled during generation, result discarded")
			return
		}
		log.Error().Err(err).Msg("worker: complete failed")
		return
	}

	w.persistAssets(ctx, log, req, generated)
	w.countOutcome(ctx, job.MediaType, true)
	log.Info().Dur("processing_time", time.Since(started)).Msg("worker: request completed")
}

func (w *Worker) handleFailure(ctx context.Context, log zerolog.Logger, job queue.Job, genErr error) {
	retryable := generator.IsRetryable(genErr)
	willRetry := retryable && job.Attempt < job.MaxRetries

	log.Error().
		Str("error", lifecycle.Truncate(genErr.Error(), lifecycle.MaxLoggedErrorLen)).
		Bool("retryable", retryable).
		Bool("will_retry", willRetry).
		Msg("worker: generation failed")

	if willRetry {
		if _, err := w.engine.ReleaseForRetry(ctx, job.RequestID, genErr.Error()); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Info().Msg("worker: request no longer processing, dropping requeue")
			} else {
				log.Error().Err(err).Msg("worker: release for retry failed")
			}
			return
		}
		requeued := job
		requeued.Attempt++
		if err := w.publisher.Publish(ctx, requeued); err != nil {
			log.Error().Err(err).Msg("worker: requeue publish failed")
		}
		return
	}

	if _, err := w.engine.FailProcessing(ctx, job.RequestID, genErr.Error()); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			log.Error().Err(err).Msg("worker: fail transition failed")
		}
		return
	}
	w.countOutcome(ctx, job.MediaType, false)
}

func (w *Worker) persistAssets(ctx context.Context, log zerolog.Logger, req *domain.MediaRequest, generated []generator.GeneratedAsset) {
	if len(generated) == 0 {
		return
	}
	assets := make([]domain.MediaAsset, 0, len(generated))
	for _, item := range generated {
		key := fmt.Sprintf("generated/%s/%s", req.ID, item.FileName)
		if w.store != nil {
			saved, err := w.store.Write(ctx, key, item.Data)
			if err != nil {
				log.Warn().Err(err).Str("file", item.FileName).Msg("worker: persist asset failed")
				continue
			}
			key = saved
		}
		assets = append(assets, domain.MediaAsset{
			ID:         uuid.NewString(),
			RequestID:  req.ID,
			UserID:     req.OwnerID,
			FilePath:   key,
			FileName:   item.FileName,
			FileSize:   int64(len(item.Data)),
			MIMEType:   item.MIMEType,
			Resolution: item.Resolution,
			Status:     domain.AssetStatusReady,
		})
	}
	if len(assets) == 0 {
		return
	}
	if err := w.assets.SaveAll(ctx, req.ID, assets); err != nil {
		log.Error().Err(err).Msg("worker: save assets failed")
	}
}

func (w *Worker) countOutcome(ctx context.Context, mediaType domain.MediaType, success bool) {
	if w.analytics == nil {
		return
	}
	counters := map[string]int{}
	if success {
		counters[domain.CounterRequestSuccess] = 1
		switch mediaType {
		case domain.MediaTypeVideo:
			counters[domain.CounterVideosGenerated] = 1
		default:
			counters[domain.CounterImagesGenerated] = 1
		}
	} else {
		counters[domain.CounterRequestFail] = 1
	}
	day := time.Now().UTC().Format("2006-01-02")
	if err := w.analytics.IncrementCounters(ctx, day, counters); err != nil {
		w.logger.Warn().Err(err).Msg("worker: analytics increment failed")
	}
}
