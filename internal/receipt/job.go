package receipt

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/jobs"
)

// Job adapts the receipt service to the Asynq task interface.
type Job struct {
	service *Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewJob constructs the Asynq handler for receipt generation.
func NewJob(service *Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *Job {
	return &Job{service: service, logger: logger, metrics: metrics}
}

// Handle processes a single receipt generation task.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.GenerateReceiptPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("receipt job payload", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics.Track(jobs.TaskTypeGenerateReceipt)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if _, err := j.service.Generate(ctx, payload.OrderID); err != nil {
		resultErr = err
		j.logger.Error("receipt job", slog.Int64("order_id", payload.OrderID), slog.Any("error", err))
		return resultErr
	}
	return nil
}
