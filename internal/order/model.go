// README: Order aggregate, status definitions, and the transition table.
package order

import (
	"time"

	"lantern/internal/types"
)

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

// AllowedTransitions represents the order state flow as code. Cancellation
// is reachable from every non-terminal state; refunds are an admin-only
// action handled separately (see Service.validateTransition).
var AllowedTransitions = map[Status][]Status{
	StatusPlaced:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

// canonicalSequence is the happy-path status order, used by the
// synthesized display timeline and the status catalog.
var canonicalSequence = []Status{
	StatusPlaced,
	StatusConfirmed,
	StatusPreparing,
	StatusReadyForPickup,
	StatusOutForDelivery,
	StatusDelivered,
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

func IsValidStatus(s Status) bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPreparing, StatusReadyForPickup,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// StatusInfo binds a status value to its human label for UI catalogs.
// This is the single source of truth; nothing else duplicates the labels.
type StatusInfo struct {
	Value Status `json:"value"`
	Label string `json:"label"`
}

var StatusCatalog = []StatusInfo{
	{StatusPlaced, "Order placed"},
	{StatusConfirmed, "Confirmed by restaurant"},
	{StatusPreparing, "Being prepared"},
	{StatusReadyForPickup, "Ready for pickup"},
	{StatusOutForDelivery, "Out for delivery"},
	{StatusDelivered, "Delivered"},
	{StatusCancelled, "Cancelled"},
	{StatusRefunded, "Refunded"},
}

// Item is one line of the order; quantity is always >= 1.
type Item struct {
	CatalogItemID types.ID `json:"catalog_item_id"`
	Quantity      int      `json:"quantity"`
}

// DeliveryLocation is the drop-off target, set once before dispatch.
type DeliveryLocation struct {
	Position types.Point `json:"coordinates"`
	Address  string      `json:"address"`
	Landmark string      `json:"landmark,omitempty"`
}

type Order struct {
	ID                    types.ID          `json:"id"`
	UserID                types.ID          `json:"user_id"`
	ProviderID            types.ID          `json:"provider_id"`
	Status                Status            `json:"status"`
	StatusVersion         int               `json:"-"`
	Items                 []Item            `json:"items"`
	DeliveryLocation      *DeliveryLocation `json:"delivery_location,omitempty"`
	CurrentLocation       *types.Point      `json:"current_location,omitempty"`
	EstimatedDeliveryTime *time.Time        `json:"estimated_delivery_time,omitempty"`
	TotalAmount           types.Money       `json:"total_amount"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// TrackingEntry is one append-only history record. Entries are never
// edited or reordered; timestamps are assigned at append time so the
// sequence is non-decreasing by construction.
type TrackingEntry struct {
	ID        types.ID    `json:"id"`
	OrderID   types.ID    `json:"order_id"`
	Position  types.Point `json:"location"`
	Status    Status      `json:"status"`
	Notes     *string     `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
}
