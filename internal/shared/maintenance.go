package shared

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/jobs"
)

// KeyRetention is how long claimed idempotency keys are kept before pruning.
// Audited dates never repeat, so keys past this window are only occupying
// space.
const KeyRetention = 90 * 24 * time.Hour

// PruneJob removes stale idempotency keys on a schedule.
type PruneJob struct {
	store   *IdempotencyStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewPruneJob constructs the Asynq handler for key pruning.
func NewPruneJob(store *IdempotencyStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *PruneJob {
	return &PruneJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes a single prune task.
func (j *PruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(jobs.TaskTypePruneKeys)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	pruned, err := j.store.Cleanup(ctx, KeyRetention)
	if err != nil {
		resultErr = err
		j.logger.Error("prune idempotency keys", slog.Any("error", err))
		return resultErr
	}
	j.logger.Info("pruned idempotency keys", slog.Int64("removed", pruned))
	return nil
}
