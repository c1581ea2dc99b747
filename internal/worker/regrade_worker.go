package worker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	RegradePollTimeout = 1 * time.Second
	RegradeMaxRetries  = 3
)

// RegradeWorker consumes attempt ids from the regrade queue and recomputes
// their scores. Items are queued by question updates.
type RegradeWorker struct {
	grading *service.GradingService
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewRegradeWorker creates a new RegradeWorker.
func NewRegradeWorker(grading *service.GradingService, rdb *redis.Client, log zerolog.Logger) *RegradeWorker {
	return &RegradeWorker{
		grading: grading,
		rdb:     rdb,
		log:     log.With().Str("component", "regrade_worker").Logger(),
	}
}

// Start runs the worker loop until the context is cancelled.
func (w *RegradeWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RegradeWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		default:
			item, err := w.rdb.BLPop(ctx, RegradePollTimeout, config.WorkerKey.RegradeQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			attemptID, err := strconv.ParseInt(item[1], 10, 64)
			if err != nil {
				w.log.Error().Str("payload", item[1]).Msg("invalid attempt id payload")
				continue
			}
			w.process(ctx, attemptID)
		}
	}
}

// process regrades one attempt, requeueing on transient failure.
func (w *RegradeWorker) process(ctx context.Context, attemptID int64) {
	defer w.rdb.Del(ctx, config.CacheKey.AttemptGradingKey(attemptID))

	var lastErr error
	for try := 0; try < RegradeMaxRetries; try++ {
		result, err := w.grading.RegradeAttempt(ctx, attemptID)
		if err == nil {
			w.log.Info().
				Int64("attempt_id", attemptID).
				Float64("score", result.Score).
				Msg("attempt regraded")
			return
		}
		lastErr = err
		if errors.Is(err, service.ErrNotFound) {
			// Attempt deleted after enqueue; nothing to do.
			w.log.Warn().Int64("attempt_id", attemptID).Msg("regrade target gone, dropping")
			return
		}
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(try+1) * 200 * time.Millisecond)
	}
	w.log.Error().Err(lastErr).Int64("attempt_id", attemptID).Msg("regrade failed, requeueing")
	w.rdb.RPush(ctx, config.WorkerKey.RegradeQueue, attemptID)
}
