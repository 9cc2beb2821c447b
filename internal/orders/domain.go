package orders

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MenuType identifies the outlet an order belongs to.
type MenuType string

const (
	MenuRestaurant  MenuType = "RESTAURANT"
	MenuBar         MenuType = "BAR"
	MenuRoomService MenuType = "ROOM_SERVICE"
)

// Status enumerates order lifecycle states.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Order is a food or bar order.
type Order struct {
	ID          int64
	OrderNumber string
	MenuType    MenuType
	RoomNumber  string
	TableNumber string
	Items       []Line
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Status      Status
	ReceiptURL  string
	CreatedBy   string
	CreatedAt   time.Time
}

// Line is a single priced item on an order. Lines are persisted as a JSON
// document alongside the order row.
type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Amount returns quantity times unit price.
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CreateInput captures fields for a new order. Subtotal/tax/total are derived.
type CreateInput struct {
	MenuType    MenuType
	RoomNumber  string
	TableNumber string
	Items       []Line
	TaxRate     decimal.Decimal
	CreatedBy   string
}

// Validate ensures the order input is coherent.
func (in CreateInput) Validate() error {
	switch in.MenuType {
	case MenuRestaurant, MenuBar, MenuRoomService:
	default:
		return ErrInvalidMenuType
	}
	if len(in.Items) == 0 {
		return errors.New("orders: at least one item required")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			return errors.New("orders: item name required")
		}
		if item.Quantity <= 0 {
			return errors.New("orders: item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return errors.New("orders: item price cannot be negative")
		}
	}
	if in.TaxRate.IsNegative() {
		return errors.New("orders: tax rate cannot be negative")
	}
	return nil
}

// Totals derives subtotal, tax and total from the line items.
func (in CreateInput) Totals() (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range in.Items {
		subtotal = subtotal.Add(item.Amount())
	}
	tax = subtotal.Mul(in.TaxRate).Round(2)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

var (
	// ErrNotFound indicates no order matches.
	ErrNotFound = errors.New("orders: not found")
	// ErrInvalidMenuType indicates an unknown outlet.
	ErrInvalidMenuType = errors.New("orders: invalid menu type")
)
