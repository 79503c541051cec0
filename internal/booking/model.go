// README: Booking aggregate, status definitions, and the transition table.
package booking

import (
	"time"

	"lantern/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// AllowedTransitions is the booking state flow. Cancellation is only
// allowed before check-in; once a guest is on the property the stay runs
// to completion. Refunds are an admin-only action handled separately.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {StatusCompleted},
}

// canonicalSequence is the happy-path status order for the synthesized
// display timeline.
var canonicalSequence = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckedOut,
	StatusCompleted,
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
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut,
		StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type StatusInfo struct {
	Value Status `json:"value"`
	Label string `json:"label"`
}

var StatusCatalog = []StatusInfo{
	{StatusPending, "Awaiting confirmation"},
	{StatusConfirmed, "Booking confirmed"},
	{StatusCheckedIn, "Checked in"},
	{StatusCheckedOut, "Checked out"},
	{StatusCompleted, "Completed"},
	{StatusCancelled, "Cancelled"},
	{StatusRefunded, "Refunded"},
}

type Booking struct {
	ID              types.ID    `json:"id"`
	GuestID         types.ID    `json:"guest_id"`
	HostID          types.ID    `json:"host_id"`
	AccommodationID types.ID    `json:"accommodation_id"`
	Status          Status      `json:"status"`
	StatusVersion   int         `json:"-"`
	CheckInDate     time.Time   `json:"check_in_date"`
	CheckOutDate    time.Time   `json:"check_out_date"`
	TotalAmount     types.Money `json:"total_amount"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// StatusEvent is one append-only audit record of a booking transition.
type StatusEvent struct {
	ID        types.ID  `json:"id"`
	BookingID types.ID  `json:"booking_id"`
	Status    Status    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
