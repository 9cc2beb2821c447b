package booking

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solara-pms/solara/internal/shared"
)

// RepositoryPort defines data access methods for bookings.
type RepositoryPort interface {
	Create(ctx context.Context, reference string, in CreateInput) (Booking, error)
	Get(ctx context.Context, id int64) (Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
	CountArrivals(ctx context.Context, day time.Time) (int, error)
	CountDepartures(ctx context.Context, day time.Time) (int, error)
	CountCheckedOutOn(ctx context.Context, day time.Time) (int, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

// ActivityRecorder captures the subset of the activity logger used here.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service handles front-desk booking operations. The night audit only reads
// bookings; status transitions happen here.
type Service struct {
	repo     RepositoryPort
	activity ActivityRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create validates and stores a new confirmed booking.
func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	if err := in.Validate(); err != nil {
		return Booking{}, err
	}
	reference := newReference()
	b, err := s.repo.Create(ctx, reference, in)
	if err != nil {
		return Booking{}, err
	}
	s.record(ctx, "booking.create", b.ID, map[string]any{"reference": b.Reference})
	return b, nil
}

// Get loads a booking.
func (s *Service) Get(ctx context.Context, id int64) (Booking, error) {
	return s.repo.Get(ctx, id)
}

// ListByStatus returns bookings in the given status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	return s.repo.ListByStatus(ctx, status)
}

// CheckIn transitions a confirmed booking to in-house.
func (s *Service) CheckIn(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, StatusCheckedIn); err != nil {
		return err
	}
	s.record(ctx, "booking.check_in", id, nil)
	return nil
}

// CheckOut transitions an in-house booking to checked out. Folio settlement is
// handled elsewhere.
func (s *Service) CheckOut(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusCheckedIn, StatusCheckedOut); err != nil {
		return err
	}
	s.record(ctx, "booking.check_out", id, nil)
	return nil
}

// Cancel voids a booking before arrival.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, StatusCancelled); err != nil {
		return err
	}
	s.record(ctx, "booking.cancel", id, nil)
	return nil
}

// CountArrivals counts confirmed bookings arriving on the date.
func (s *Service) CountArrivals(ctx context.Context, day time.Time) (int, error) {
	return s.repo.CountArrivals(ctx, day)
}

// CountDepartures counts in-house bookings departing on the date.
func (s *Service) CountDepartures(ctx context.Context, day time.Time) (int, error) {
	return s.repo.CountDepartures(ctx, day)
}

// CountCheckedOutOn counts bookings that checked out on the date.
func (s *Service) CountCheckedOutOn(ctx context.Context, day time.Time) (int, error) {
	return s.repo.CountCheckedOutOn(ctx, day)
}

func (s *Service) record(ctx context.Context, action string, bookingID int64, meta map[string]any) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityEntry{
		Action:   action,
		Entity:   "booking",
		EntityID: strconv.FormatInt(bookingID, 10),
		Meta:     meta,
	})
}

func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
