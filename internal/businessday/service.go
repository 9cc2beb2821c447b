package businessday

import (
	"context"
	"errors"
	"time"
)

// RepositoryPort defines data access methods for the business day singleton.
type RepositoryPort interface {
	Load(ctx context.Context) (BusinessDay, error)
	Init(ctx context.Context, date time.Time) error
	Roll(ctx context.Context, expectedSeq int64, next, lastAudit time.Time) error
}

// Service mediates reads and the audited rollover of the operating date.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Current returns the singleton record.
func (s *Service) Current(ctx context.Context) (BusinessDay, error) {
	return s.repo.Load(ctx)
}

// CurrentOrInit returns the singleton, creating it from the wall clock when
// the hotel has never been initialised.
func (s *Service) CurrentOrInit(ctx context.Context) (BusinessDay, error) {
	day, err := s.repo.Load(ctx)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, ErrNotInitialised) {
		return BusinessDay{}, err
	}
	if err := s.repo.Init(ctx, s.now()); err != nil {
		return BusinessDay{}, err
	}
	return s.repo.Load(ctx)
}

// Roll advances the operating date by one calendar day, rejecting the update
// when the record's sequence moved since it was read.
func (s *Service) Roll(ctx context.Context, day BusinessDay) error {
	return s.repo.Roll(ctx, day.Seq, day.Next(), day.Date)
}
