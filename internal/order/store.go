// README: Order store backed by PostgreSQL; tracking writes are CAS-guarded.
package order

import (
	"context"
	"database/sql"
	"encoding/json"
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

const orderColumns = `
	id, user_id, provider_id, status, status_version, items,
	delivery_lat, delivery_lng, delivery_address, delivery_landmark,
	current_lat, current_lng, estimated_delivery_time,
	total_amount, currency, created_at, updated_at`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1`, string(id),
	)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items []byte
	var deliveryLat, deliveryLng, currentLat, currentLng sql.NullFloat64
	var deliveryAddress, deliveryLandmark sql.NullString
	var estimated sql.NullTime

	err := row.Scan(
		&o.ID, &o.UserID, &o.ProviderID, &o.Status, &o.StatusVersion, &items,
		&deliveryLat, &deliveryLng, &deliveryAddress, &deliveryLandmark,
		&currentLat, &currentLng, &estimated,
		&o.TotalAmount.Amount, &o.TotalAmount.Currency, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
	}
	if deliveryLat.Valid && deliveryLng.Valid {
		o.DeliveryLocation = &DeliveryLocation{
			Position: types.Point{Lat: deliveryLat.Float64, Lng: deliveryLng.Float64},
			Address:  deliveryAddress.String,
			Landmark: deliveryLandmark.String,
		}
	}
	if currentLat.Valid && currentLng.Valid {
		o.CurrentLocation = &types.Point{Lat: currentLat.Float64, Lng: currentLng.Float64}
	}
	if estimated.Valid {
		t := estimated.Time
		o.EstimatedDeliveryTime = &t
	}
	return &o, nil
}

// ApplyTracking performs the tracking write as a single transaction:
// compare-and-swap on (status, status_version), overwrite of the current
// location, optional ETA set, and the history-entry insert. Returns
// (false, nil) when the CAS misses, meaning a concurrent writer won.
func (s *PGStore) ApplyTracking(ctx context.Context, id types.ID, from Status, version int, upd TrackingUpdate) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    current_lat = $2,
		    current_lng = $3,
		    estimated_delivery_time = COALESCE($4, estimated_delivery_time),
		    updated_at = $5
		WHERE id = $6 AND status = $7 AND status_version = $8`,
		string(upd.Status),
		upd.Position.Lat, upd.Position.Lng,
		upd.EstimatedDeliveryTime,
		now,
		string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_tracking_events (
			id, order_id, lat, lng, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(upd.EntryID), string(id),
		upd.Position.Lat, upd.Position.Lng,
		string(upd.Status), upd.Notes, now,
	)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *PGStore) SetDeliveryLocation(ctx context.Context, id types.ID, loc DeliveryLocation) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET delivery_lat = $1,
		    delivery_lng = $2,
		    delivery_address = $3,
		    delivery_landmark = $4,
		    updated_at = NOW()
		WHERE id = $5`,
		loc.Position.Lat, loc.Position.Lng,
		loc.Address, nullIfEmpty(loc.Landmark),
		string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListTracking(ctx context.Context, id types.ID) ([]TrackingEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, lat, lng, status, notes, created_at
		FROM order_tracking_events
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TrackingEntry
	for rows.Next() {
		var e TrackingEntry
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Position.Lat, &e.Position.Lng, &e.Status, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			e.Notes = &notes.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PGStore) ListByStatus(ctx context.Context, statuses []Status) ([]*Order, error) {
	vals := make([]string, 0, len(statuses))
	for _, st := range statuses {
		vals = append(vals, string(st))
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = ANY($1)
		ORDER BY updated_at DESC`, vals,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PGStore) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(userID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]*Order, error) {
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
