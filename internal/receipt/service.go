package receipt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/solara-pms/solara/internal/orders"
)

// OrdersPort exposes the order operations the receipt pipeline needs.
type OrdersPort interface {
	Get(ctx context.Context, id int64) (orders.Order, error)
	SetReceiptURL(ctx context.Context, id int64, url string) error
}

// Service orchestrates receipt generation for a single order.
type Service struct {
	logger   *slog.Logger
	orders   OrdersPort
	builder  *Builder
	renderer *Renderer
	store    ObjectStore
}

// NewService constructs the receipt service.
func NewService(logger *slog.Logger, ordersPort OrdersPort, builder *Builder, renderer *Renderer, store ObjectStore) *Service {
	return &Service{
		logger:   logger,
		orders:   ordersPort,
		builder:  builder,
		renderer: renderer,
		store:    store,
	}
}

// Generate renders the receipt PDF for an order, uploads it and records the
// resulting URL on the order. It returns the URL.
func (s *Service) Generate(ctx context.Context, orderID int64) (string, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("receipt: load order %d: %w", orderID, err)
	}

	doc := s.builder.Build(order)
	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("receipt: render order %s: %w", order.OrderNumber, err)
	}

	key := fmt.Sprintf("receipts/%s.pdf", uuid.NewString())
	url, err := s.store.Upload(ctx, key, "application/pdf", pdf)
	if err != nil {
		return "", fmt.Errorf("receipt: upload order %s: %w", order.OrderNumber, err)
	}

	if err := s.orders.SetReceiptURL(ctx, order.ID, url); err != nil {
		return "", fmt.Errorf("receipt: record url for order %s: %w", order.OrderNumber, err)
	}

	s.logger.Info("receipt generated",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("url", url))
	return url, nil
}
