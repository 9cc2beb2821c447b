// Package receipt renders printable receipts for food and bar orders.
package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/internal/orders"
)

// Document is the view model handed to the receipt template.
type Document struct {
	HotelName   string
	MenuLabel   string
	OrderNumber string
	CreatedAt   time.Time
	CreatedBy   string
	Lines       []LineView
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// LineView is a single rendered order line.
type LineView struct {
	Quantity  int
	Name      string
	LineTotal decimal.Decimal
}

// Builder turns orders into receipt documents.
type Builder struct {
	hotelName string
}

// NewBuilder constructs a builder stamped with the hotel name.
func NewBuilder(hotelName string) *Builder {
	return &Builder{hotelName: hotelName}
}

// Build assembles the view model for one order.
func (b *Builder) Build(order orders.Order) Document {
	lines := make([]LineView, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, LineView{
			Quantity:  item.Quantity,
			Name:      item.Name,
			LineTotal: item.Amount(),
		})
	}
	return Document{
		HotelName:   b.hotelName,
		MenuLabel:   menuLabel(order.MenuType),
		OrderNumber: order.OrderNumber,
		CreatedAt:   order.CreatedAt,
		CreatedBy:   order.CreatedBy,
		Lines:       lines,
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Total:       order.Total,
	}
}

func menuLabel(menu orders.MenuType) string {
	switch menu {
	case orders.MenuRestaurant:
		return "Restaurant"
	case orders.MenuBar:
		return "Bar"
	case orders.MenuRoomService:
		return "Room Service"
	default:
		return string(menu)
	}
}
