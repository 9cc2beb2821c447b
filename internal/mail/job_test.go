package mail

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/jobs"
)

func TestMailJobSkipsMalformedPayload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewJob(NewSender("localhost", 1025, "", "", "no-reply@solara.local"), logger, jobmetrics.NewMetrics(nil))

	task := asynq.NewTask(jobs.TaskTypeSendEmail, []byte("{not json"))
	err := job.Handle(context.Background(), task)

	assert.ErrorIs(t, err, asynq.SkipRetry)
}
