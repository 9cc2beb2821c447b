package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// CreateRoom inserts a room and seeds its housekeeping status as CLEAN.
func (r *Repository) CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error) {
	now := time.Now()
	room := Room{Number: in.Number, Type: in.Type, BaseRate: in.BaseRate, Active: true, CreatedAt: now, UpdatedAt: now}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO rooms (number, type, base_rate, active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $5) RETURNING id`, in.Number, in.Type, in.BaseRate, now, now).Scan(&room.ID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO room_statuses (room_number, status, notes, updated_at)
VALUES ($1, $2, '', $3) ON CONFLICT (room_number) DO NOTHING`, in.Number, StatusClean, now)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Room{}, ErrDuplicateNumber
		}
		return Room{}, err
	}
	return room, nil
}

// ListRooms returns all rooms ordered by number.
func (r *Repository) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, type, base_rate, active, created_at, updated_at FROM rooms ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Type, &room.BaseRate, &room.Active, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListStatuses returns housekeeping statuses for all rooms.
func (r *Repository) ListStatuses(ctx context.Context) ([]RoomStatus, error) {
	rows, err := r.pool.Query(ctx, `SELECT room_number, status, notes, updated_at FROM room_statuses ORDER BY room_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []RoomStatus
	for rows.Next() {
		var rs RoomStatus
		if err := rows.Scan(&rs.RoomNumber, &rs.Status, &rs.Notes, &rs.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the housekeeping state for one room.
func (r *Repository) UpdateStatus(ctx context.Context, roomNumber string, status HousekeepingStatus, notes string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE room_statuses SET status = $1, notes = $2, updated_at = NOW() WHERE room_number = $3`,
		status, notes, roomNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
