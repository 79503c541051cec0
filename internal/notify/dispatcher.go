// README: Fire-and-forget status-change dispatcher over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	KindStatusChanged  = "status_changed"
	KindLocationUpdate = "location_update"
)

// Event is a tracking change fanned out to downstream listeners (push,
// websocket bridges). Losing one never fails the originating operation.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EntityType string    `json:"entity_type"` // "order" | "booking"
	EntityID   string    `json:"entity_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Dispatcher struct {
	redis   *redis.Client
	channel string
	log     *zap.Logger
}

func NewDispatcher(redis *redis.Client, channel string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{redis: redis, channel: channel, log: log}
}

// Publish sends the event to the tracking channel. Failures are logged
// and swallowed; notification delivery must never roll back tracking
// writes.
func (d *Dispatcher) Publish(ctx context.Context, evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		d.log.Warn("notify: marshal event", zap.Error(err))
		return
	}
	if err := d.redis.Publish(ctx, d.channel, payload).Err(); err != nil {
		d.log.Warn("notify: publish failed",
			zap.String("entity_id", evt.EntityID),
			zap.Error(err))
	}
}
