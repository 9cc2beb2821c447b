package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates guest stay lifecycle states.
type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
)

// Booking is a guest stay record.
type Booking struct {
	ID         int64
	Reference  string
	GuestName  string
	GuestEmail string
	GuestPhone string
	Status     Status
	CheckIn    time.Time
	CheckOut   time.Time
	Rooms      []Room
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Room is a room assigned to a booking with its agreed nightly rate.
type Room struct {
	ID          int64
	BookingID   int64
	RoomNumber  string
	NightlyRate decimal.Decimal
}

// NightlyTotal sums the nightly rates of all assigned rooms. One full night is
// assumed per audit run; there is no partial-stay proration.
func (b Booking) NightlyTotal() decimal.Decimal {
	total := decimal.Zero
	for _, room := range b.Rooms {
		total = total.Add(room.NightlyRate)
	}
	return total
}

// CreateInput captures fields for a new booking.
type CreateInput struct {
	GuestName  string
	GuestEmail string
	GuestPhone string
	CheckIn    time.Time
	CheckOut   time.Time
	Rooms      []RoomInput
}

// RoomInput assigns a room at a nightly rate.
type RoomInput struct {
	RoomNumber  string
	NightlyRate decimal.Decimal
}

// Validate ensures the create input is coherent.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.GuestName) == "" {
		return errors.New("booking: guest name required")
	}
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return errors.New("booking: check-in and check-out dates required")
	}
	if !in.CheckIn.Before(in.CheckOut) {
		return errors.New("booking: check-out must be after check-in")
	}
	if len(in.Rooms) == 0 {
		return errors.New("booking: at least one room required")
	}
	for _, room := range in.Rooms {
		if strings.TrimSpace(room.RoomNumber) == "" {
			return errors.New("booking: room number required")
		}
		if room.NightlyRate.IsNegative() {
			return errors.New("booking: nightly rate cannot be negative")
		}
	}
	return nil
}

var (
	// ErrNotFound indicates no booking matches.
	ErrNotFound = errors.New("booking: not found")
	// ErrInvalidTransition indicates the status change is not allowed.
	ErrInvalidTransition = errors.New("booking: invalid status transition")
)
