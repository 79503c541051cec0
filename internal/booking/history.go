// README: Synthesized display timeline for bookings.
package booking

import "time"

// bookingTimelineStep is the fixed spacing used when reconstructing a
// plausible booking timeline; stays move in days, not minutes.
const bookingTimelineStep = 24 * time.Hour

type TimelineStep struct {
	Status    Status    `json:"status"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"completed"`
	Estimated bool      `json:"estimated"`
}

// SynthesizeTimeline walks the canonical booking sequence from the
// creation time at one-day steps. Cancelled/refunded bookings get their
// terminal status appended at the last update time.
func SynthesizeTimeline(b *Booking) []TimelineStep {
	rank := canonicalRank(b.Status)

	steps := make([]TimelineStep, 0, len(canonicalSequence)+1)
	for i, st := range canonicalSequence {
		steps = append(steps, TimelineStep{
			Status:    st,
			Label:     statusLabel(st),
			Timestamp: b.CreatedAt.Add(time.Duration(i) * bookingTimelineStep),
			Completed: rank >= 0 && i <= rank,
			Estimated: rank < 0 || i > rank,
		})
	}

	if b.Status == StatusCancelled || b.Status == StatusRefunded {
		steps = append(steps, TimelineStep{
			Status:    b.Status,
			Label:     statusLabel(b.Status),
			Timestamp: b.UpdatedAt,
			Completed: true,
		})
	}
	return steps
}

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
