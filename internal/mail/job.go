package mail

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/jobs"
)

// Job delivers queued emails through the SMTP sender.
type Job struct {
	sender  *Sender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewJob constructs the Asynq handler for outbound mail.
func NewJob(sender *Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *Job {
	return &Job{sender: sender, logger: logger, metrics: metrics}
}

// Handle processes a single send-email task.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("mail job payload", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics.Track(jobs.TaskTypeSendEmail)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	msg := Message{To: payload.To, Subject: payload.Subject, Body: payload.Body}
	for _, a := range payload.Attachments {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Data,
		})
	}
	if err := j.sender.Send(msg); err != nil {
		resultErr = err
		j.logger.Error("mail job", slog.String("subject", payload.Subject), slog.Any("error", err))
		return resultErr
	}
	return nil
}
