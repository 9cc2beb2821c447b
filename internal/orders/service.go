package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for food orders.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	CreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error)
	SetReceiptURL(ctx context.Context, id int64, url string) error
}

// Service handles food and bar order business logic.
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

// Create validates, prices, and stores a new order.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	subtotal, tax, total := in.Totals()
	order := Order{
		OrderNumber: newOrderNumber(in.MenuType),
		MenuType:    in.MenuType,
		RoomNumber:  in.RoomNumber,
		TableNumber: in.TableNumber,
		Items:       in.Items,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		Status:      StatusOpen,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now(),
	}
	return s.repo.Create(ctx, order)
}

// Get loads a single order.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

// CreatedOn returns orders created during the given calendar date.
func (s *Service) CreatedOn(ctx context.Context, day time.Time) ([]Order, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.CreatedBetween(ctx, from, from.AddDate(0, 0, 1))
}

// SetReceiptURL persists the receipt location for an order.
func (s *Service) SetReceiptURL(ctx context.Context, id int64, url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("orders: receipt url required")
	}
	return s.repo.SetReceiptURL(ctx, id, url)
}

func newOrderNumber(menuType MenuType) string {
	prefix := "FO"
	switch menuType {
	case MenuBar:
		prefix = "BO"
	case MenuRoomService:
		prefix = "RS"
	}
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
