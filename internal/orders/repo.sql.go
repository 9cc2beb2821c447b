package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an order with its items serialised as JSON.
func (r *Repository) Create(ctx context.Context, order Order) (Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return Order{}, err
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO food_orders
(order_number, menu_type, room_number, table_number, items, subtotal, tax, total, status, receipt_url, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '', $10, $11) RETURNING id`,
		order.OrderNumber, order.MenuType, order.RoomNumber, order.TableNumber, items,
		order.Subtotal, order.Tax, order.Total, order.Status, order.CreatedBy, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// Get loads a single order.
func (r *Repository) Get(ctx context.Context, id int64) (Order, error) {
	row := r.pool.QueryRow(ctx, selectOrderSQL+` WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return order, nil
}

// CreatedBetween returns orders created inside the half-open window [from, to).
func (r *Repository) CreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := r.pool.Query(ctx, selectOrderSQL+` WHERE created_at >= $1 AND created_at < $2 ORDER BY id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetReceiptURL persists the generated receipt location on the order.
func (r *Repository) SetReceiptURL(ctx context.Context, id int64, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE food_orders SET receipt_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectOrderSQL = `SELECT id, order_number, menu_type, room_number, table_number, items, subtotal, tax, total, status, receipt_url, created_by, created_at
FROM food_orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var order Order
	var items []byte
	err := row.Scan(&order.ID, &order.OrderNumber, &order.MenuType, &order.RoomNumber, &order.TableNumber,
		&items, &order.Subtotal, &order.Tax, &order.Total, &order.Status, &order.ReceiptURL, &order.CreatedBy, &order.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return Order{}, err
		}
	}
	return order, nil
}
