// README: Tracking façade: access control, state transitions, history appends, ETA recompute.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lantern/internal/maps"
	"lantern/internal/notify"
	"lantern/internal/types"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("order state conflict")
	ErrBadRequest        = errors.New("bad request")
)

// TrackingUpdate is the write applied by Store.ApplyTracking. A nil
// EstimatedDeliveryTime leaves any previously stored ETA untouched.
type TrackingUpdate struct {
	EntryID               types.ID
	Position              types.Point
	Status                Status
	Notes                 *string
	EstimatedDeliveryTime *time.Time
}

// Store is the persistence contract the service needs. *PGStore satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	Get(ctx context.Context, id types.ID) (*Order, error)
	ApplyTracking(ctx context.Context, id types.ID, from Status, version int, upd TrackingUpdate) (bool, error)
	SetDeliveryLocation(ctx context.Context, id types.ID, loc DeliveryLocation) error
	ListTracking(ctx context.Context, id types.ID) ([]TrackingEntry, error)
	ListByStatus(ctx context.Context, statuses []Status) ([]*Order, error)
	ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Order, error)
}

// RoutePlanner is the slice of the maps planner the service consumes.
type RoutePlanner interface {
	EstimatedArrival(ctx context.Context, origin, destination types.Point, mode maps.TravelMode) (time.Time, error)
	LiveLeg(ctx context.Context, origin, destination types.Point) (maps.LegEstimate, error)
}

// Notifier fans out tracking changes; implementations must never fail the
// calling operation.
type Notifier interface {
	Publish(ctx context.Context, evt notify.Event)
}

type Service struct {
	store   Store
	planner RoutePlanner
	notify  Notifier
	log     *zap.Logger
}

func NewService(store Store, planner RoutePlanner, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, planner: planner, notify: notifier, log: log}
}

type UpdateLocationCommand struct {
	OrderID   types.ID
	Actor     types.Actor
	Position  types.Point
	NewStatus *Status
	Notes     *string
}

type SetStatusCommand struct {
	OrderID types.ID
	Actor   types.Actor
	Status  Status
	Notes   *string
}

type SetDeliveryLocationCommand struct {
	OrderID  types.ID
	Actor    types.Actor
	Location DeliveryLocation
}

// UpdateResult echoes what was actually applied so clients can detect
// whether their requested transition took effect.
type UpdateResult struct {
	Order     *Order    `json:"order"`
	NewStatus Status    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingInfo is the read-model for a tracking query. The route fields
// are best-effort: provider failure leaves them nil rather than failing
// the response.
type TrackingInfo struct {
	OrderID               types.ID          `json:"order_id"`
	Status                Status            `json:"status"`
	CurrentLocation       *types.Point      `json:"current_location,omitempty"`
	DeliveryLocation      *DeliveryLocation `json:"delivery_location,omitempty"`
	EstimatedDeliveryTime *time.Time        `json:"estimated_delivery_time,omitempty"`
	Distance              string            `json:"distance,omitempty"`
	Duration              string            `json:"duration,omitempty"`
	EstimatedArrival      *time.Time        `json:"estimated_arrival,omitempty"`
	History               []TrackingEntry   `json:"history"`
}

// UpdateLocation appends a tracking entry, optionally applies a status
// transition, and recomputes the ETA when the order goes out for delivery
// with a known destination. Provider failure is tolerated: the mutation
// proceeds and only the ETA is omitted.
func (s *Service) UpdateLocation(ctx context.Context, cmd UpdateLocationCommand) (*UpdateResult, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutate(cmd.Actor, o); err != nil {
		return nil, err
	}

	target := o.Status
	if cmd.NewStatus != nil {
		if !IsValidStatus(*cmd.NewStatus) {
			return nil, ErrBadRequest
		}
		if err := s.validateTransition(cmd.Actor, o.Status, *cmd.NewStatus); err != nil {
			return nil, err
		}
		target = *cmd.NewStatus
	}

	upd := TrackingUpdate{
		EntryID:  types.ID(uuid.NewString()),
		Position: cmd.Position,
		Status:   target,
		Notes:    cmd.Notes,
	}
	if target == StatusOutForDelivery && o.DeliveryLocation != nil {
		eta, err := s.planner.EstimatedArrival(ctx, cmd.Position, o.DeliveryLocation.Position, maps.ModeDriving)
		if err != nil {
			s.log.Warn("eta recompute failed; continuing without",
				zap.String("order_id", string(o.ID)),
				zap.Error(err))
		} else {
			upd.EstimatedDeliveryTime = &eta
		}
	}

	ok, err := s.store.ApplyTracking(ctx, o.ID, o.Status, o.StatusVersion, upd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	updated, err := s.store.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Kind:       notifyKind(o.Status, target),
		EntityType: "order",
		EntityID:   string(o.ID),
		Status:     string(target),
	})

	return &UpdateResult{
		Order:     updated,
		NewStatus: target,
		Timestamp: updated.UpdatedAt,
	}, nil
}

// SetStatus applies a transition without a fresh position; the entry
// reuses the last known location (or the zero point before any update).
func (s *Service) SetStatus(ctx context.Context, cmd SetStatusCommand) (*UpdateResult, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutate(cmd.Actor, o); err != nil {
		return nil, err
	}
	if !IsValidStatus(cmd.Status) {
		return nil, ErrBadRequest
	}
	if err := s.validateTransition(cmd.Actor, o.Status, cmd.Status); err != nil {
		return nil, err
	}

	var pos types.Point
	if o.CurrentLocation != nil {
		pos = *o.CurrentLocation
	}

	upd := TrackingUpdate{
		EntryID:  types.ID(uuid.NewString()),
		Position: pos,
		Status:   cmd.Status,
		Notes:    cmd.Notes,
	}
	if cmd.Status == StatusOutForDelivery && o.DeliveryLocation != nil && o.CurrentLocation != nil {
		eta, err := s.planner.EstimatedArrival(ctx, pos, o.DeliveryLocation.Position, maps.ModeDriving)
		if err != nil {
			s.log.Warn("eta recompute failed; continuing without",
				zap.String("order_id", string(o.ID)),
				zap.Error(err))
		} else {
			upd.EstimatedDeliveryTime = &eta
		}
	}

	ok, err := s.store.ApplyTracking(ctx, o.ID, o.Status, o.StatusVersion, upd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	updated, err := s.store.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.notify.Publish(ctx, notify.Event{
		Kind:       notify.KindStatusChanged,
		EntityType: "order",
		EntityID:   string(o.ID),
		Status:     string(cmd.Status),
	})

	return &UpdateResult{Order: updated, NewStatus: cmd.Status, Timestamp: updated.UpdatedAt}, nil
}

// SetDeliveryLocation sets the drop-off target. Idempotent, last write
// wins, no history entry.
func (s *Service) SetDeliveryLocation(ctx context.Context, cmd SetDeliveryLocationCommand) error {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	// The customer places the destination; the provider or an admin may
	// correct it before dispatch.
	if cmd.Actor.ID != o.UserID && cmd.Actor.ID != o.ProviderID && !cmd.Actor.IsAdmin() {
		return ErrForbidden
	}
	if cmd.Location.Address == "" {
		return ErrBadRequest
	}
	return s.store.SetDeliveryLocation(ctx, cmd.OrderID, cmd.Location)
}

// Tracking returns the live tracking view. Ownership is re-checked here on
// every call; route fields are filled best-effort.
func (s *Service) Tracking(ctx context.Context, orderID types.ID, actor types.Actor) (*TrackingInfo, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, o); err != nil {
		return nil, err
	}

	history, err := s.store.ListTracking(ctx, orderID)
	if err != nil {
		return nil, err
	}

	info := &TrackingInfo{
		OrderID:               o.ID,
		Status:                o.Status,
		CurrentLocation:       o.CurrentLocation,
		DeliveryLocation:      o.DeliveryLocation,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		History:               history,
	}

	if o.CurrentLocation != nil && o.DeliveryLocation != nil {
		leg, err := s.planner.LiveLeg(ctx, *o.CurrentLocation, o.DeliveryLocation.Position)
		if err != nil {
			s.log.Warn("live route lookup failed; returning tracking without route fields",
				zap.String("order_id", string(o.ID)),
				zap.Error(err))
		} else {
			info.Distance = leg.DistanceText
			info.Duration = leg.DurationText
			if !leg.ETA.IsZero() {
				eta := leg.ETA
				info.EstimatedArrival = &eta
			}
		}
	}
	return info, nil
}

// History returns the raw append-only tracking history.
func (s *Service) History(ctx context.Context, orderID types.ID, actor types.Actor) ([]TrackingEntry, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, o); err != nil {
		return nil, err
	}
	return s.store.ListTracking(ctx, orderID)
}

// Timeline returns the synthesized display timeline (see history.go).
func (s *Service) Timeline(ctx context.Context, orderID types.ID, actor types.Actor) ([]TimelineStep, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(actor, o); err != nil {
		return nil, err
	}
	return SynthesizeTimeline(o), nil
}

// ActiveDeliveries is the operational view of in-flight orders. The
// handler restricts it to privileged roles; there is no per-entity check.
func (s *Service) ActiveDeliveries(ctx context.Context) ([]*Order, error) {
	return s.store.ListByStatus(ctx, []Status{StatusPreparing, StatusOutForDelivery})
}

// ListByUser exposes recent orders for the activity feed.
func (s *Service) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Order, error) {
	return s.store.ListByUser(ctx, userID, limit)
}

func (s *Service) authorizeView(actor types.Actor, o *Order) error {
	if actor.ID == o.UserID || actor.ID == o.ProviderID || actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

func (s *Service) authorizeMutate(actor types.Actor, o *Order) error {
	if actor.ID == o.ProviderID || actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// validateTransition enforces the transition graph for normal actors.
// Admins bypass the graph but may never leave a terminal state except to
// refunded (post-delivery refunds).
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

func notifyKind(from, to Status) string {
	if from != to {
		return notify.KindStatusChanged
	}
	return notify.KindLocationUpdate
}
