package nightaudit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/jobs"
)

// Job adapts the audit service to the Asynq task interface so the nightly
// cron trigger and manual enqueues share one code path.
type Job struct {
	service *Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewJob constructs the Asynq handler for night audit runs.
func NewJob(service *Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *Job {
	return &Job{service: service, logger: logger, metrics: metrics}
}

// Handle processes a single night audit task.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.NightAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("night audit payload", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics.Track(jobs.TaskTypeNightAudit)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	result, err := j.service.Run(ctx, payload.StaffID, payload.StaffName)
	if err != nil {
		if errors.Is(err, ErrAlreadyAudited) || errors.Is(err, ErrAuditInProgress) {
			j.logger.Info("night audit skipped", slog.Any("reason", err))
			return asynq.SkipRetry
		}
		resultErr = err
		return resultErr
	}
	if result.Outcome == OutcomeWarning {
		j.metrics.AddWarning(jobs.TaskTypeNightAudit, "report_delivery")
	}
	return nil
}
