package orders

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
	orders map[int64]*Order
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: map[int64]*Order{}}
}

func (m *mockRepository) Create(ctx context.Context, order Order) (Order, error) {
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = &order
	return order, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return *o, nil
}

func (m *mockRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	out := []Order{}
	for _, o := range m.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockRepository) SetReceiptURL(ctx context.Context, id int64, url string) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.ReceiptURL = url
	return nil
}

func sampleInput(menu MenuType) CreateInput {
	return CreateInput{
		MenuType: menu,
		Items: []Line{
			{Name: "Club Sandwich", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
			{Name: "Fresh Juice", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		},
		TaxRate:   decimal.RequireFromString("0.10"),
		CreatedBy: "frontdesk",
	}
}

func TestCreateDerivesTotals(t *testing.T) {
	svc := NewService(newMockRepository())

	order, err := svc.Create(context.Background(), sampleInput(MenuRestaurant))
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("30.00")), "subtotal %s", order.Subtotal)
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("3.00")), "tax %s", order.Tax)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("33.00")), "total %s", order.Total)
	assert.Equal(t, StatusOpen, order.Status)
}

func TestCreateNumbersByOutlet(t *testing.T) {
	svc := NewService(newMockRepository())

	cases := []struct {
		menu   MenuType
		prefix string
	}{
		{MenuRestaurant, "FO-"},
		{MenuBar, "BO-"},
		{MenuRoomService, "RS-"},
	}
	for _, tc := range cases {
		order, err := svc.Create(context.Background(), sampleInput(tc.menu))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(order.OrderNumber, tc.prefix), "got %s", order.OrderNumber)
	}
}

func TestCreateRejectsUnknownOutlet(t *testing.T) {
	svc := NewService(newMockRepository())

	in := sampleInput("SPA")
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidMenuType)
}

func TestCreatedOnFiltersByCalendarDate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	stamp := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return stamp })
	_, err := svc.Create(context.Background(), sampleInput(MenuBar))
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return stamp.AddDate(0, 0, 1) })
	_, err = svc.Create(context.Background(), sampleInput(MenuBar))
	require.NoError(t, err)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.CreatedOn(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stamp, got[0].CreatedAt)
}

func TestSetReceiptURLRequiresValue(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), sampleInput(MenuRestaurant))
	require.NoError(t, err)

	require.Error(t, svc.SetReceiptURL(context.Background(), order.ID, "  "))
	require.NoError(t, svc.SetReceiptURL(context.Background(), order.ID, "https://example.com/r.pdf"))

	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/r.pdf", got.ReceiptURL)
}
