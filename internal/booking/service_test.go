package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	bookings map[int64]*Booking
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{bookings: map[int64]*Booking{}}
}

func (m *mockRepository) Create(ctx context.Context, reference string, in CreateInput) (Booking, error) {
	m.nextID++
	b := Booking{
		ID:        m.nextID,
		Reference: reference,
		GuestName: in.GuestName,
		Status:    StatusConfirmed,
		CheckIn:   in.CheckIn,
		CheckOut:  in.CheckOut,
	}
	for _, room := range in.Rooms {
		b.Rooms = append(b.Rooms, Room{
			BookingID:   b.ID,
			RoomNumber:  room.RoomNumber,
			NightlyRate: room.NightlyRate,
		})
	}
	m.bookings[b.ID] = &b
	return b, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return *b, nil
}

func (m *mockRepository) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	out := []Booking{}
	for _, b := range m.bookings {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepository) CountArrivals(ctx context.Context, day time.Time) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.Status == StatusConfirmed && b.CheckIn.Equal(day) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) CountDepartures(ctx context.Context, day time.Time) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.Status == StatusCheckedIn && b.CheckOut.Equal(day) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) CountCheckedOutOn(ctx context.Context, day time.Time) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.Status == StatusCheckedOut && b.CheckOut.Equal(day) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return ErrInvalidTransition
	}
	b.Status = to
	return nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		GuestName: "Grace Hopper",
		CheckIn:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		Rooms: []RoomInput{
			{RoomNumber: "101", NightlyRate: decimal.RequireFromString("95.00")},
		},
	}
}

func TestCreateAssignsReference(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	b, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.Reference, "BK-"))
	assert.Len(t, b.Reference, 11)
	assert.Equal(t, StatusConfirmed, b.Status)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	in := validCreateInput()
	in.Rooms = nil
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
}

func TestLifecycleTransitions(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	b, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.CheckIn(context.Background(), b.ID))
	got, err := svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, got.Status)

	require.NoError(t, svc.CheckOut(context.Background(), b.ID))
	got, err = svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, got.Status)
}

func TestInvalidTransitionsRejected(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	b, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	// Checking out before checking in must fail.
	require.ErrorIs(t, svc.CheckOut(context.Background(), b.ID), ErrInvalidTransition)

	require.NoError(t, svc.CheckIn(context.Background(), b.ID))

	// An in-house guest cannot be cancelled.
	require.ErrorIs(t, svc.Cancel(context.Background(), b.ID), ErrInvalidTransition)
}

func TestNightlyTotalSumsAllRooms(t *testing.T) {
	b := Booking{Rooms: []Room{
		{RoomNumber: "101", NightlyRate: decimal.RequireFromString("95.00")},
		{RoomNumber: "201", NightlyRate: decimal.RequireFromString("140.00")},
	}}
	assert.True(t, b.NightlyTotal().Equal(decimal.RequireFromString("235.00")))
}

func TestOccupancyCounts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	departing := validCreateInput()
	departing.CheckIn = day.AddDate(0, 0, -2)
	departing.CheckOut = day
	inHouse, err := svc.Create(context.Background(), departing)
	require.NoError(t, err)
	require.NoError(t, svc.CheckIn(context.Background(), inHouse.ID))

	arrivals, err := svc.CountArrivals(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, arrivals)

	departures, err := svc.CountDepartures(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, departures)
}
