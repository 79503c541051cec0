// README: Booking service tests against in-memory fakes.
package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lantern/internal/notify"
	"lantern/internal/types"
)

type memStore struct {
	bookings map[types.ID]*Booking
	events   map[types.ID][]StatusEvent
}

func newMemStore(bookings ...*Booking) *memStore {
	m := &memStore{
		bookings: map[types.ID]*Booking{},
		events:   map[types.ID][]StatusEvent{},
	}
	for _, b := range bookings {
		cp := *b
		m.bookings[b.ID] = &cp
	}
	return m
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ApplyTransition(_ context.Context, id types.ID, from Status, version int, upd StatusUpdate) (bool, error) {
	b, ok := m.bookings[id]
	if !ok {
		return false, ErrNotFound
	}
	if b.Status != from || b.StatusVersion != version {
		return false, nil
	}
	now := time.Now()
	b.Status = upd.Status
	b.StatusVersion++
	b.UpdatedAt = now
	m.events[id] = append(m.events[id], StatusEvent{
		ID:        upd.EventID,
		BookingID: id,
		Status:    upd.Status,
		Notes:     upd.Notes,
		CreatedAt: now,
	})
	return true, nil
}

func (m *memStore) ListEvents(_ context.Context, id types.ID) ([]StatusEvent, error) {
	return append([]StatusEvent(nil), m.events[id]...), nil
}

func (m *memStore) ListByGuest(_ context.Context, guestID types.ID, limit int) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		if b.GuestID == guestID {
			cp := *b
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Publish(_ context.Context, evt notify.Event) {
	n.events = append(n.events, evt)
}

var (
	guest    = types.Actor{ID: "guest-1", Role: types.RoleCustomer}
	host     = types.Actor{ID: "host-1", Role: types.RoleHost}
	admin    = types.Actor{ID: "admin-1", Role: types.RoleAdmin}
	stranger = types.Actor{ID: "guest-2", Role: types.RoleCustomer}
)

func testBooking(status Status) *Booking {
	return &Booking{
		ID:              "bkg-1",
		GuestID:         "guest-1",
		HostID:          "host-1",
		AccommodationID: "acc-9",
		Status:          status,
		CheckInDate:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:    time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		TotalAmount:     types.Money{Amount: 24000, Currency: "PKR"},
		CreatedAt:       time.Now().Add(-48 * time.Hour),
		UpdatedAt:       time.Now().Add(-48 * time.Hour),
	}
}

func newTestService(store Store) (*Service, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewService(store, n, zap.NewNop()), n
}

func TestSetStatus_HostRunsTheStay(t *testing.T) {
	b := testBooking(StatusPending)
	store := newMemStore(b)
	svc, notifier := newTestService(store)
	ctx := context.Background()

	for _, next := range []Status{StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCompleted} {
		res, err := svc.SetStatus(ctx, SetStatusCommand{BookingID: b.ID, Actor: host, Status: next})
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if res.Booking.Status != next {
			t.Fatalf("status = %s, want %s", res.Booking.Status, next)
		}
	}

	events, _ := store.ListEvents(ctx, b.ID)
	if len(events) != 4 {
		t.Errorf("audit events = %d, want 4", len(events))
	}
	if len(notifier.events) != 4 {
		t.Errorf("notifications = %d, want 4", len(notifier.events))
	}
	for _, evt := range notifier.events {
		if evt.EntityType != "booking" {
			t.Errorf("entity type = %s", evt.EntityType)
		}
	}
}

func TestSetStatus_GuestMayOnlyCancel(t *testing.T) {
	ctx := context.Background()

	b := testBooking(StatusPending)
	svc, _ := newTestService(newMemStore(b))
	if _, err := svc.SetStatus(ctx, SetStatusCommand{BookingID: b.ID, Actor: guest, Status: StatusConfirmed}); !errors.Is(err, ErrForbidden) {
		t.Errorf("guest confirm: expected ErrForbidden, got %v", err)
	}

	b2 := testBooking(StatusConfirmed)
	svc2, _ := newTestService(newMemStore(b2))
	res, err := svc2.SetStatus(ctx, SetStatusCommand{BookingID: b2.ID, Actor: guest, Status: StatusCancelled})
	if err != nil {
		t.Fatalf("guest cancel: %v", err)
	}
	if res.Booking.Status != StatusCancelled {
		t.Errorf("status = %s", res.Booking.Status)
	}
}

func TestSetStatus_NoCancelAfterCheckIn(t *testing.T) {
	b := testBooking(StatusCheckedIn)
	svc, _ := newTestService(newMemStore(b))
	_, err := svc.SetStatus(context.Background(), SetStatusCommand{BookingID: b.ID, Actor: host, Status: StatusCancelled})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSetStatus_RefundPolicy(t *testing.T) {
	ctx := context.Background()

	b := testBooking(StatusCompleted)
	svc, _ := newTestService(newMemStore(b))
	if _, err := svc.SetStatus(ctx, SetStatusCommand{BookingID: b.ID, Actor: host, Status: StatusRefunded}); !errors.Is(err, ErrForbidden) {
		t.Errorf("host refund: expected ErrForbidden, got %v", err)
	}

	svc2, _ := newTestService(newMemStore(b))
	res, err := svc2.SetStatus(ctx, SetStatusCommand{BookingID: b.ID, Actor: admin, Status: StatusRefunded})
	if err != nil {
		t.Fatalf("admin refund: %v", err)
	}
	if res.Booking.Status != StatusRefunded {
		t.Errorf("status = %s", res.Booking.Status)
	}

	// Terminal states are otherwise sealed, even for admins.
	b3 := testBooking(StatusCancelled)
	svc3, _ := newTestService(newMemStore(b3))
	if _, err := svc3.SetStatus(ctx, SetStatusCommand{BookingID: b3.ID, Actor: admin, Status: StatusConfirmed}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSetStatus_ConflictOnStaleVersion(t *testing.T) {
	b := testBooking(StatusPending)
	store := newMemStore(b)
	store.bookings[b.ID].StatusVersion = 3
	stale := *b

	svc, _ := newTestService(&staleReadStore{memStore: store, stale: &stale})
	_, err := svc.SetStatus(context.Background(), SetStatusCommand{BookingID: b.ID, Actor: host, Status: StatusConfirmed})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

type staleReadStore struct {
	*memStore
	stale *Booking
}

func (s *staleReadStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	if id == s.stale.ID {
		cp := *s.stale
		return &cp, nil
	}
	return s.memStore.Get(context.Background(), id)
}

func TestGetAndHistory_AccessControl(t *testing.T) {
	b := testBooking(StatusConfirmed)
	svc, _ := newTestService(newMemStore(b))
	ctx := context.Background()

	for _, actor := range []types.Actor{guest, host, admin} {
		if _, err := svc.Get(ctx, b.ID, actor); err != nil {
			t.Errorf("actor %s get: %v", actor.ID, err)
		}
		if _, err := svc.History(ctx, b.ID, actor); err != nil {
			t.Errorf("actor %s history: %v", actor.ID, err)
		}
	}
	if _, err := svc.Get(ctx, b.ID, stranger); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger get: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Timeline(ctx, b.ID, stranger); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger timeline: expected ErrForbidden, got %v", err)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	_, err := svc.SetStatus(context.Background(), SetStatusCommand{BookingID: "missing", Actor: admin, Status: StatusConfirmed})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
