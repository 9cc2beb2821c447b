package businessday

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the singleton row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load fetches the singleton business day row.
func (r *Repository) Load(ctx context.Context) (BusinessDay, error) {
	var day BusinessDay
	var lastAudit *time.Time
	err := r.pool.QueryRow(ctx, `SELECT business_date, last_audit_date, status, seq, updated_at FROM business_days WHERE id = 1`).
		Scan(&day.Date, &lastAudit, &day.Status, &day.Seq, &day.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusinessDay{}, ErrNotInitialised
		}
		return BusinessDay{}, err
	}
	day.Date = Truncate(day.Date)
	if lastAudit != nil {
		t := Truncate(*lastAudit)
		day.LastAuditDate = &t
	}
	return day, nil
}

// Init inserts the singleton row when absent. The insert is a no-op if a
// concurrent caller created the row first.
func (r *Repository) Init(ctx context.Context, date time.Time) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO business_days (id, business_date, status, seq, updated_at)
VALUES (1, $1, $2, 0, NOW()) ON CONFLICT (id) DO NOTHING`, Truncate(date), StatusOpen)
	return err
}

// Roll advances the business date with a compare-and-swap on seq.
func (r *Repository) Roll(ctx context.Context, expectedSeq int64, next, lastAudit time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE business_days
SET business_date = $1, last_audit_date = $2, status = $3, seq = seq + 1, updated_at = NOW()
WHERE id = 1 AND seq = $4`, Truncate(next), Truncate(lastAudit), StatusOpen, expectedSeq)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSeqConflict
	}
	return nil
}
