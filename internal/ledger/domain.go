package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger row.
type EntryType string

const (
	EntryIncome  EntryType = "INCOME"
	EntryExpense EntryType = "EXPENSE"
)

// Well-known categories written by the system. Manual entries may carry
// arbitrary categories.
const (
	CategoryRoomCharge  = "ROOM_CHARGE"
	CategoryFoodAndBar  = "FOOD_AND_BAR"
	CategoryAdjustment  = "ADJUSTMENT"
	CategoryMaintenance = "MAINTENANCE"
)

// Entry is an append-only financial transaction row.
type Entry struct {
	ID                 int64
	EntryDate          time.Time
	EntryType          EntryType
	Category           string
	Description        string
	Amount             decimal.Decimal
	PaymentMethod      string
	ReferenceID        string
	CreatedBy          string
	AccountsReceivable bool
	CreatedAt          time.Time
}

// EntryInput captures the fields required to append an entry.
type EntryInput struct {
	EntryDate          time.Time
	EntryType          EntryType
	Category           string
	Description        string
	Amount             decimal.Decimal
	PaymentMethod      string
	ReferenceID        string
	CreatedBy          string
	AccountsReceivable bool
}

// Validate ensures the input describes a postable entry.
func (in EntryInput) Validate() error {
	if in.EntryDate.IsZero() {
		return errors.New("ledger: entry date required")
	}
	switch in.EntryType {
	case EntryIncome, EntryExpense:
	default:
		return ErrInvalidEntryType
	}
	if strings.TrimSpace(in.Category) == "" {
		return errors.New("ledger: category required")
	}
	if !in.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// DayTotals aggregates amounts per entry type for a single date.
type DayTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

var (
	ErrInvalidEntryType  = errors.New("ledger: invalid entry type")
	ErrNonPositiveAmount = errors.New("ledger: amount must be positive")
)
