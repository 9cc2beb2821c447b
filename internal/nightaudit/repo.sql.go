package nightaudit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for audit runs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertRunSQL = `INSERT INTO night_audit_runs
(business_date, status, steps, summary, run_by_id, run_by, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

// Create inserts a new run row and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, run AuditRun) (AuditRun, error) {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return AuditRun{}, err
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return AuditRun{}, err
	}
	err = r.pool.QueryRow(ctx, insertRunSQL,
		run.BusinessDate, run.Status, steps, summary,
		run.RunByID, run.RunBy, run.StartedAt).Scan(&run.ID)
	if err != nil {
		return AuditRun{}, err
	}
	return run, nil
}

const updateProgressSQL = `UPDATE night_audit_runs
SET steps = $2, summary = $3
WHERE id = $1`

// UpdateProgress persists the step flags and summary of an in-flight run.
func (r *Repository) UpdateProgress(ctx context.Context, id int64, steps Steps, summary Summary) error {
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, updateProgressSQL, id, stepsJSON, summaryJSON)
	return err
}

const finalizeRunSQL = `UPDATE night_audit_runs
SET status = $2, steps = $3, summary = $4, error_message = $5, finished_at = $6
WHERE id = $1`

// Finalize records the terminal status of a run.
func (r *Repository) Finalize(ctx context.Context, run AuditRun) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return err
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, finalizeRunSQL,
		run.ID, run.Status, steps, summary, run.ErrorMessage, run.FinishedAt)
	return err
}

const selectRunSQL = `SELECT id, business_date, status, steps, summary,
COALESCE(error_message, ''), run_by_id, run_by, started_at, finished_at
FROM night_audit_runs`

// Get loads a single run by id.
func (r *Repository) Get(ctx context.Context, id int64) (AuditRun, error) {
	row := r.pool.QueryRow(ctx, selectRunSQL+" WHERE id = $1", id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuditRun{}, ErrRunNotFound
	}
	return run, err
}

// Recent lists the most recent runs, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]AuditRun, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx, selectRunSQL+" ORDER BY started_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	runs := make([]AuditRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (AuditRun, error) {
	var (
		run         AuditRun
		stepsJSON   []byte
		summaryJSON []byte
		finishedAt  *time.Time
	)
	err := row.Scan(&run.ID, &run.BusinessDate, &run.Status, &stepsJSON, &summaryJSON,
		&run.ErrorMessage, &run.RunByID, &run.RunBy, &run.StartedAt, &finishedAt)
	if err != nil {
		return AuditRun{}, err
	}
	if err := json.Unmarshal(stepsJSON, &run.Steps); err != nil {
		return AuditRun{}, err
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return AuditRun{}, err
	}
	run.FinishedAt = finishedAt
	return run, nil
}
