package mail

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/solara-pms/solara/jobs"
)

// Enqueuer submits send-email tasks to the queue.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// QueueSender hands messages to the worker instead of dialing SMTP inline,
// keeping slow relays out of the request path.
type QueueSender struct {
	enqueuer Enqueuer
}

// NewQueueSender constructs a queue backed sender.
func NewQueueSender(enqueuer Enqueuer) *QueueSender {
	return &QueueSender{enqueuer: enqueuer}
}

// Send enqueues the message for background delivery.
func (s *QueueSender) Send(msg Message) error {
	payload := jobs.SendEmailPayload{To: msg.To, Subject: msg.Subject, Body: msg.Body}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, jobs.EmailAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Data,
		})
	}
	if _, err := s.enqueuer.EnqueueSendEmail(context.Background(), payload); err != nil {
		return fmt.Errorf("mail: enqueue: %w", err)
	}
	return nil
}
