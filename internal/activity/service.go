// README: Cross-domain activity feed: recent orders and bookings merged.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"lantern/internal/booking"
	"lantern/internal/order"
	"lantern/internal/types"
)

const defaultLimit = 20

// Entry is one row of the merged feed, newest first.
type Entry struct {
	Type        string      `json:"type"` // "order" | "booking"
	ID          types.ID    `json:"id"`
	Status      string      `json:"status"`
	Amount      types.Money `json:"amount"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
}

// OrderSource and BookingSource are the slices of the domain services the
// feed consumes.
type OrderSource interface {
	ListByUser(ctx context.Context, userID types.ID, limit int) ([]*order.Order, error)
}

type BookingSource interface {
	ListByGuest(ctx context.Context, guestID types.ID, limit int) ([]*booking.Booking, error)
}

type Service struct {
	orders   OrderSource
	bookings BookingSource
	log      *zap.Logger
}

func NewService(orders OrderSource, bookings BookingSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{orders: orders, bookings: bookings, log: log}
}

// Feed merges the user's recent orders and bookings into one
// reverse-chronological list. Each source is over-fetched by the full
// limit so the merge cannot starve either side.
func (s *Service) Feed(ctx context.Context, userID types.ID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	orders, err := s.orders.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	bookings, err := s.bookings.ListByGuest(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	entries := make([]Entry, 0, len(orders)+len(bookings))
	for _, o := range orders {
		entries = append(entries, Entry{
			Type:        "order",
			ID:          o.ID,
			Status:      string(o.Status),
			Amount:      o.TotalAmount,
			Date:        o.CreatedAt,
			Description: orderDescription(o),
		})
	}
	for _, b := range bookings {
		entries = append(entries, Entry{
			Type:        "booking",
			ID:          b.ID,
			Status:      string(b.Status),
			Amount:      b.TotalAmount,
			Date:        b.CreatedAt,
			Description: bookingDescription(b),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func orderDescription(o *order.Order) string {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	if n == 1 {
		return "Food order with 1 item"
	}
	return fmt.Sprintf("Food order with %d items", n)
}

func bookingDescription(b *booking.Booking) string {
	return fmt.Sprintf("Stay from %s to %s",
		b.CheckInDate.Format("Jan 2, 2006"),
		b.CheckOutDate.Format("Jan 2, 2006"))
}
