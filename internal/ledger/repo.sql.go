package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertEntrySQL = `INSERT INTO ledger_entries
(entry_date, entry_type, category, description, amount, payment_method, reference_id, created_by, accounts_receivable, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

// Append inserts a single entry and returns it with its assigned id.
func (r *Repository) Append(ctx context.Context, in EntryInput) (Entry, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, insertEntrySQL,
		in.EntryDate, in.EntryType, in.Category, in.Description, in.Amount,
		in.PaymentMethod, in.ReferenceID, in.CreatedBy, in.AccountsReceivable, now).Scan(&id)
	if err != nil {
		return Entry{}, err
	}
	return entryFromInput(id, in, now), nil
}

// AppendBatch inserts all entries inside one repeatable-read transaction. A
// failure on any row rolls back the whole batch.
func (r *Repository) AppendBatch(ctx context.Context, inputs []EntryInput) ([]Entry, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	now := time.Now()
	entries := make([]Entry, 0, len(inputs))
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, in := range inputs {
			var id int64
			err := tx.QueryRow(ctx, insertEntrySQL,
				in.EntryDate, in.EntryType, in.Category, in.Description, in.Amount,
				in.PaymentMethod, in.ReferenceID, in.CreatedBy, in.AccountsReceivable, now).Scan(&id)
			if err != nil {
				return err
			}
			entries = append(entries, entryFromInput(id, in, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByDate returns entries posted for the given business date.
func (r *Repository) ListByDate(ctx context.Context, day time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_date, entry_type, category, description, amount, payment_method, reference_id, created_by, accounts_receivable, created_at
FROM ledger_entries WHERE entry_date = $1 ORDER BY id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EntryDate, &e.EntryType, &e.Category, &e.Description, &e.Amount,
			&e.PaymentMethod, &e.ReferenceID, &e.CreatedBy, &e.AccountsReceivable, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// TotalsForDate aggregates income and expense sums for a date.
func (r *Repository) TotalsForDate(ctx context.Context, day time.Time) (DayTotals, error) {
	rows, err := r.pool.Query(ctx, `SELECT entry_type, COALESCE(SUM(amount), 0)
FROM ledger_entries WHERE entry_date = $1 GROUP BY entry_type`, day)
	if err != nil {
		return DayTotals{}, err
	}
	defer rows.Close()
	totals := DayTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for rows.Next() {
		var entryType EntryType
		var sum decimal.Decimal
		if err := rows.Scan(&entryType, &sum); err != nil {
			return DayTotals{}, err
		}
		switch entryType {
		case EntryIncome:
			totals.Income = sum
		case EntryExpense:
			totals.Expense = sum
		}
	}
	if err := rows.Err(); err != nil {
		return DayTotals{}, err
	}
	return totals, nil
}

func entryFromInput(id int64, in EntryInput, now time.Time) Entry {
	return Entry{
		ID:                 id,
		EntryDate:          in.EntryDate,
		EntryType:          in.EntryType,
		Category:           in.Category,
		Description:        in.Description,
		Amount:             in.Amount,
		PaymentMethod:      in.PaymentMethod,
		ReferenceID:        in.ReferenceID,
		CreatedBy:          in.CreatedBy,
		AccountsReceivable: in.AccountsReceivable,
		CreatedAt:          now,
	}
}
