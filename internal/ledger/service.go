package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/solara-pms/solara/internal/shared"
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	Append(ctx context.Context, in EntryInput) (Entry, error)
	AppendBatch(ctx context.Context, inputs []EntryInput) ([]Entry, error)
	ListByDate(ctx context.Context, day time.Time) ([]Entry, error)
	TotalsForDate(ctx context.Context, day time.Time) (DayTotals, error)
}

// ActivityRecorder captures the subset of the activity logger used here.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles ledger business logic.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Append validates and posts a single entry.
func (s *Service) Append(ctx context.Context, in EntryInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	entry, err := s.repo.Append(ctx, in)
	if err != nil {
		return Entry{}, err
	}
	s.recordActivity(ctx, entry)
	return entry, nil
}

// AppendBatch validates and posts entries as a single all-or-nothing batch.
func (s *Service) AppendBatch(ctx context.Context, inputs []EntryInput) ([]Entry, error) {
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}
	return s.repo.AppendBatch(ctx, inputs)
}

// ListByDate returns entries for the given date.
func (s *Service) ListByDate(ctx context.Context, day time.Time) ([]Entry, error) {
	return s.repo.ListByDate(ctx, day)
}

// TotalsForDate aggregates income/expense sums for a date.
func (s *Service) TotalsForDate(ctx context.Context, day time.Time) (DayTotals, error) {
	return s.repo.TotalsForDate(ctx, day)
}

func (s *Service) recordActivity(ctx context.Context, entry Entry) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		Action:   "ledger.append",
		Entity:   "ledger_entry",
		EntityID: strconv.FormatInt(entry.ID, 10),
		Meta: map[string]any{
			"category": entry.Category,
			"amount":   entry.Amount.String(),
			"type":     string(entry.EntryType),
		},
	})
}
