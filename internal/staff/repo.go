package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for staff accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByUsername loads a staff member by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx, `SELECT id, username, password_hash, display_name, role, active, created_at, updated_at
FROM staff WHERE username = $1`, username).
		Scan(&m.ID, &m.Username, &m.PasswordHash, &m.DisplayName, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}
