package rooms

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HousekeepingStatus enumerates cleaning states tracked per room.
type HousekeepingStatus string

const (
	StatusClean      HousekeepingStatus = "CLEAN"
	StatusDirty      HousekeepingStatus = "DIRTY"
	StatusInspected  HousekeepingStatus = "INSPECTED"
	StatusOutOfOrder HousekeepingStatus = "OUT_OF_ORDER"
)

// Room is a sellable room in the property's master data.
type Room struct {
	ID        int64
	Number    string
	Type      string
	BaseRate  decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomStatus is the housekeeping state for one room.
type RoomStatus struct {
	RoomNumber string
	Status     HousekeepingStatus
	Notes      string
	UpdatedAt  time.Time
}

// CreateRoomInput captures fields for new room master data.
type CreateRoomInput struct {
	Number   string
	Type     string
	BaseRate decimal.Decimal
}

// Validate ensures the room input is coherent.
func (in CreateRoomInput) Validate() error {
	if strings.TrimSpace(in.Number) == "" {
		return errors.New("rooms: room number required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return errors.New("rooms: room type required")
	}
	if in.BaseRate.IsNegative() {
		return errors.New("rooms: base rate cannot be negative")
	}
	return nil
}

// IsValidHousekeepingStatus reports whether the status is a known value.
func IsValidHousekeepingStatus(status HousekeepingStatus) bool {
	switch status {
	case StatusClean, StatusDirty, StatusInspected, StatusOutOfOrder:
		return true
	default:
		return false
	}
}

var (
	// ErrNotFound indicates no room matches.
	ErrNotFound = errors.New("rooms: not found")
	// ErrDuplicateNumber indicates the room number already exists.
	ErrDuplicateNumber = errors.New("rooms: room number already exists")
	// ErrInvalidStatus indicates an unknown housekeeping status.
	ErrInvalidStatus = errors.New("rooms: invalid housekeeping status")
)
