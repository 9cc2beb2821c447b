package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNightAudit is the task type for running the night audit.
	TaskTypeNightAudit = "audit:night"
	// TaskTypeGenerateReceipt is the task type for rendering an order receipt.
	TaskTypeGenerateReceipt = "receipt:generate"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePruneKeys is the task type for pruning stale idempotency keys.
	TaskTypePruneKeys = "maintenance:prune_keys"
)

// NightAuditPayload identifies who triggered an audit run. Scheduled runs
// leave the staff fields zeroed and the handler attributes them to the system.
type NightAuditPayload struct {
	StaffID   int64  `json:"staff_id"`
	StaffName string `json:"staff_name"`
}

// NewNightAuditTask constructs an Asynq task for the night audit.
func NewNightAuditTask(payload NightAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNightAudit, data), nil
}

// GenerateReceiptPayload identifies the order a receipt should be rendered for.
type GenerateReceiptPayload struct {
	OrderID int64 `json:"order_id"`
}

// NewGenerateReceiptTask constructs an Asynq task for receipt generation.
func NewGenerateReceiptTask(payload GenerateReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeGenerateReceipt, data), nil
}

// EmailAttachment carries one attachment inline in the task payload.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To          []string          `json:"to"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewPruneKeysTask constructs the maintenance task that prunes stale
// idempotency keys. It carries no payload.
func NewPruneKeysTask() *asynq.Task {
	return asynq.NewTask(TaskTypePruneKeys, nil)
}
