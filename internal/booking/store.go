// README: Booking store backed by PostgreSQL; transitions are CAS-guarded.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lantern/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const bookingColumns = `
	id, guest_id, host_id, accommodation_id, status, status_version,
	check_in_date, check_out_date, total_amount, currency, created_at, updated_at`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1`, string(id),
	)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.GuestID, &b.HostID, &b.AccommodationID, &b.Status, &b.StatusVersion,
		&b.CheckInDate, &b.CheckOutDate,
		&b.TotalAmount.Amount, &b.TotalAmount.Currency, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ApplyTransition performs the booking write as a single transaction:
// compare-and-swap on (status, status_version) plus the audit-event
// insert. Returns (false, nil) when the CAS misses.
func (s *PGStore) ApplyTransition(ctx context.Context, id types.ID, from Status, version int, upd StatusUpdate) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    updated_at = $2
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(upd.Status), now,
		string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_status_events (
			id, booking_id, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(upd.EventID), string(id),
		string(upd.Status), upd.Notes, now,
	)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *PGStore) ListEvents(ctx context.Context, id types.ID) ([]StatusEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, status, notes, created_at
		FROM booking_status_events
		WHERE booking_id = $1
		ORDER BY created_at ASC, id ASC`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StatusEvent
	for rows.Next() {
		var e StatusEvent
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Status, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			e.Notes = &notes.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PGStore) ListByGuest(ctx context.Context, guestID types.ID, limit int) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(guestID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
