package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
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

// Create inserts the booking and its rooms inside one transaction.
func (r *Repository) Create(ctx context.Context, reference string, in CreateInput) (Booking, error) {
	now := time.Now()
	b := Booking{
		Reference:  reference,
		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		GuestPhone: in.GuestPhone,
		Status:     StatusConfirmed,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO bookings (reference, guest_name, guest_email, guest_phone, status, check_in, check_out, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			b.Reference, b.GuestName, b.GuestEmail, b.GuestPhone, b.Status, b.CheckIn, b.CheckOut, now, now).Scan(&b.ID)
		if err != nil {
			return err
		}
		for _, room := range in.Rooms {
			var roomID int64
			err = tx.QueryRow(ctx, `INSERT INTO booking_rooms (booking_id, room_number, nightly_rate) VALUES ($1, $2, $3) RETURNING id`,
				b.ID, room.RoomNumber, room.NightlyRate).Scan(&roomID)
			if err != nil {
				return err
			}
			b.Rooms = append(b.Rooms, Room{ID: roomID, BookingID: b.ID, RoomNumber: room.RoomNumber, NightlyRate: room.NightlyRate})
		}
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Get loads a booking with its rooms.
func (r *Repository) Get(ctx context.Context, id int64) (Booking, error) {
	var b Booking
	err := r.pool.QueryRow(ctx, `SELECT id, reference, guest_name, guest_email, guest_phone, status, check_in, check_out, created_at, updated_at
FROM bookings WHERE id = $1`, id).
		Scan(&b.ID, &b.Reference, &b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.Status, &b.CheckIn, &b.CheckOut, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	rooms, err := r.loadRooms(ctx, []int64{b.ID})
	if err != nil {
		return Booking{}, err
	}
	b.Rooms = rooms[b.ID]
	return b, nil
}

// ListByStatus returns bookings in the given status, rooms included.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, reference, guest_name, guest_email, guest_phone, status, check_in, check_out, created_at, updated_at
FROM bookings WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bookings []Booking
	var ids []int64
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.Status, &b.CheckIn, &b.CheckOut, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	roomsByBooking, err := r.loadRooms(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Rooms = roomsByBooking[bookings[i].ID]
	}
	return bookings, nil
}

// CountArrivals counts confirmed bookings checking in on the given date.
func (r *Repository) CountArrivals(ctx context.Context, day time.Time) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1 AND check_in = $2`, StatusConfirmed, day)
}

// CountDepartures counts in-house bookings checking out on the given date.
func (r *Repository) CountDepartures(ctx context.Context, day time.Time) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1 AND check_out = $2`, StatusCheckedIn, day)
}

// CountCheckedOutOn counts bookings that completed checkout on the given date.
func (r *Repository) CountCheckedOutOn(ctx context.Context, day time.Time) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1 AND check_out = $2`, StatusCheckedOut, day)
}

// UpdateStatus transitions a booking's status, guarding the expected current
// status at the database level.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) loadRooms(ctx context.Context, bookingIDs []int64) (map[int64][]Room, error) {
	result := make(map[int64][]Room, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, booking_id, room_number, nightly_rate FROM booking_rooms WHERE booking_id = ANY($1) ORDER BY id`, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.BookingID, &room.RoomNumber, &room.NightlyRate); err != nil {
			return nil, err
		}
		result[room.BookingID] = append(result[room.BookingID], room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
