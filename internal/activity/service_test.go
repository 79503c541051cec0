// README: Activity feed merge tests.
package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"lantern/internal/booking"
	"lantern/internal/order"
	"lantern/internal/types"
)

type stubOrders struct {
	orders []*order.Order
	err    error
}

func (s *stubOrders) ListByUser(context.Context, types.ID, int) ([]*order.Order, error) {
	return s.orders, s.err
}

type stubBookings struct {
	bookings []*booking.Booking
	err      error
}

func (s *stubBookings) ListByGuest(context.Context, types.ID, int) ([]*booking.Booking, error) {
	return s.bookings, s.err
}

func day(d int) time.Time {
	return time.Date(2026, 6, d, 12, 0, 0, 0, time.UTC)
}

func TestFeed_MergesNewestFirst(t *testing.T) {
	orders := &stubOrders{orders: []*order.Order{
		{ID: "o1", Status: order.StatusDelivered, CreatedAt: day(3),
			Items:       []order.Item{{CatalogItemID: "dish", Quantity: 2}, {CatalogItemID: "drink", Quantity: 1}},
			TotalAmount: types.Money{Amount: 1800, Currency: "PKR"}},
		{ID: "o2", Status: order.StatusPlaced, CreatedAt: day(1),
			Items:       []order.Item{{CatalogItemID: "dish", Quantity: 1}},
			TotalAmount: types.Money{Amount: 600, Currency: "PKR"}},
	}}
	bookings := &stubBookings{bookings: []*booking.Booking{
		{ID: "b1", Status: booking.StatusConfirmed, CreatedAt: day(2),
			CheckInDate:  time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
			TotalAmount:  types.Money{Amount: 30000, Currency: "PKR"}},
	}}

	svc := NewService(orders, bookings, nil)
	feed, err := svc.Feed(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	wantIDs := []types.ID{"o1", "b1", "o2"}
	if len(feed) != len(wantIDs) {
		t.Fatalf("feed length = %d, want %d", len(feed), len(wantIDs))
	}
	for i, id := range wantIDs {
		if feed[i].ID != id {
			t.Errorf("feed[%d].ID = %s, want %s", i, feed[i].ID, id)
		}
	}
	if feed[0].Description != "Food order with 3 items" {
		t.Errorf("order description = %q", feed[0].Description)
	}
	if feed[1].Description != "Stay from Jul 1, 2026 to Jul 4, 2026" {
		t.Errorf("booking description = %q", feed[1].Description)
	}
	if feed[2].Description != "Food order with 1 item" {
		t.Errorf("singular description = %q", feed[2].Description)
	}
}

func TestFeed_AppliesLimitAfterMerge(t *testing.T) {
	var os []*order.Order
	for i := 1; i <= 5; i++ {
		os = append(os, &order.Order{ID: types.ID(string(rune('a' + i))), CreatedAt: day(i)})
	}
	bs := []*booking.Booking{{ID: "b-new", CreatedAt: day(10)}}

	svc := NewService(&stubOrders{orders: os}, &stubBookings{bookings: bs}, nil)
	feed, err := svc.Feed(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("feed length = %d, want 3", len(feed))
	}
	// The newest entry is the booking even though orders outnumber it.
	if feed[0].ID != "b-new" || feed[0].Type != "booking" {
		t.Errorf("feed[0] = %+v, want the newest booking", feed[0])
	}
}

func TestFeed_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&stubOrders{err: boom}, &stubBookings{}, nil)
	if _, err := svc.Feed(context.Background(), "u1", 5); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestFeed_EmptySources(t *testing.T) {
	svc := NewService(&stubOrders{}, &stubBookings{}, nil)
	feed, err := svc.Feed(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed, got %d entries", len(feed))
	}
}
