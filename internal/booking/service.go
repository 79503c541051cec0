// README: Booking tracking façade: access control, transitions, audit history.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lantern/internal/notify"
	"lantern/internal/types"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("booking state conflict")
	ErrBadRequest        = errors.New("bad request")
)

// StatusUpdate is the write applied by Store.ApplyTransition.
type StatusUpdate struct {
	EventID types.ID
	Status  Status
	Notes   *string
}

// Store is the persistence contract the service needs. *PGStore satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ApplyTransition(ctx context.Context, id types.ID, from Status, version int, upd StatusUpdate) (bool, error)
	ListEvents(ctx context.Context, id types.ID) ([]StatusEvent, error)
	ListByGuest(ctx context.Context, guestID types.ID, limit int) ([]*Booking, error)
}

// Notifier fans out booking changes; implementations must never fail the
// calling operation.
type Notifier interface {
	Publish(ctx context.Context, evt notify.Event)
}

type Service struct {
	store  Store
	notify Notifier
	log    *zap.Logger
}

func NewService(store Store, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, notify: notifier, log: log}
}

type SetStatusCommand struct {
	BookingID types.ID
	Actor     types.Actor
	Status    Status
	Notes     *string
}

type UpdateResult struct {
	Booking   *Booking `json:"booking"`
	NewStatus Status   `json:"new_status"`
}

// Get returns the booking after re-checking ownership.
func (s *Service) Get(ctx context.Context, bookingID types.ID, actor types.Actor) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetStatus applies a booking transition under the CAS guard and records
// the audit event.
func (s *Service) SetStatus(ctx context.Context, cmd SetStatusCommand) (*UpdateResult, error) {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutate(cmd.Actor, b); err != nil {
		return nil, err
	}
	if !IsValidStatus(cmd.Status) {
		return nil, ErrBadRequest
	}
	// A guest's only move is cancelling their own booking.
	if cmd.Actor.ID == b.GuestID && cmd.Actor.ID != b.HostID && !cmd.Actor.IsAdmin() && cmd.Status != StatusCancelled {
		return nil, ErrForbidden
	}
	if err := s.validateTransition(cmd.Actor, b.Status, cmd.Status); err != nil {
		return nil, err
	}

	ok, err := s.store.ApplyTransition(ctx, b.ID, b.Status, b.StatusVersion, StatusUpdate{
		EventID: types.ID(uuid.NewString()),
		Status:  cmd.Status,
		Notes:   cmd.Notes,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	updated, err := s.store.Get(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Kind:       notify.KindStatusChanged,
		EntityType: "booking",
		EntityID:   string(b.ID),
		Status:     string(cmd.Status),
	})

	return &UpdateResult{Booking: updated, NewStatus: cmd.Status}, nil
}

// History returns the append-only audit trail of transitions.
func (s *Service) History(ctx context.Context, bookingID types.ID, actor types.Actor) ([]StatusEvent, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, b); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, bookingID)
}

// Timeline returns the synthesized display timeline (see history.go).
func (s *Service) Timeline(ctx context.Context, bookingID types.ID, actor types.Actor) ([]TimelineStep, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, b); err != nil {
		return nil, err
	}
	return SynthesizeTimeline(b), nil
}

// ListByGuest exposes recent bookings for the activity feed.
func (s *Service) ListByGuest(ctx context.Context, guestID types.ID, limit int) ([]*Booking, error) {
	return s.store.ListByGuest(ctx, guestID, limit)
}

func (s *Service) authorizeView(actor types.Actor, b *Booking) error {
	if actor.ID == b.GuestID || actor.ID == b.HostID || actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// The host runs the stay; a guest may mutate only their own booking, and
// SetStatus further restricts them to cancellation.
func (s *Service) authorizeMutate(actor types.Actor, b *Booking) error {
	if actor.ID == b.HostID || actor.IsAdmin() {
		return nil
	}
	if actor.ID == b.GuestID {
		return nil
	}
	return ErrForbidden
}

// validateTransition enforces the booking graph. Guests may only cancel;
// admins bypass the graph but may never leave a terminal state except to
// refunded.
func (s *Service) validateTransition(actor types.Actor, from, to Status) error {
	if from == to {
		return nil
	}
	if actor.IsAdmin() {
		if IsTerminal(from) && to != StatusRefunded {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		return nil
	}
	if to == StatusRefunded {
		return ErrForbidden
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
