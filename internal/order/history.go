// README: Synthesized display timeline for orders with sparse real history.
package order

import "time"

// orderTimelineStep is the fixed spacing used when reconstructing a
// plausible timeline for display.
const orderTimelineStep = 15 * time.Minute

// TimelineStep is one step of the synthesized timeline. Completed steps
// are the ones the order has passed through; the rest are estimates.
// This is a display aid, never persisted over real history.
type TimelineStep struct {
	Status    Status    `json:"status"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"completed"`
	Estimated bool      `json:"estimated"`
}

// SynthesizeTimeline walks the canonical status sequence from the order's
// creation time at fixed intervals. Steps up to and including the current
// status are completed; later steps are estimates. Cancelled/refunded
// orders get their terminal status appended as a final completed step at
// the order's last update time.
func SynthesizeTimeline(o *Order) []TimelineStep {
	rank := canonicalRank(o.Status)

	steps := make([]TimelineStep, 0, len(canonicalSequence)+1)
	for i, st := range canonicalSequence {
		steps = append(steps, TimelineStep{
			Status:    st,
			Label:     statusLabel(st),
			Timestamp: o.CreatedAt.Add(time.Duration(i) * orderTimelineStep),
			Completed: rank >= 0 && i <= rank,
			Estimated: rank < 0 || i > rank,
		})
	}

	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		steps = append(steps, TimelineStep{
			Status:    o.Status,
			Label:     statusLabel(o.Status),
			Timestamp: o.UpdatedAt,
			Completed: true,
		})
	}
	return steps
}

// canonicalRank returns the index of s in the happy-path sequence, or -1
// for the off-path statuses (cancelled, refunded).
func canonicalRank(s Status) int {
	for i, st := range canonicalSequence {
		if st == s {
			return i
		}
	}
	return -1
}

func statusLabel(s Status) string {
	for _, info := range StatusCatalog {
		if info.Value == s {
			return info.Label
		}
	}
	return string(s)
}
