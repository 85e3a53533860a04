// Package events carries the live push channel. The publisher is
// injected wherever engine mutations happen; it is a latency
// optimization only — clients must always be able to rebuild state from
// the poll endpoints, so publish failures are logged, never propagated.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type enumerates the mirrored engine events.
type Type string

const (
	TypeActivityBroadcast Type = "activity_broadcast"
	TypeNewResponse       Type = "new_response"
	TypeRankingUpdate     Type = "ranking_update"
	TypeActivityEnded     Type = "activity_ended"
)

// Event is one push-channel message. Payload carries an event-specific
// snapshot (activity view, ranking rows, …).
type Event struct {
	Type       Type        `json:"type"`
	SessionID  uuid.UUID   `json:"session_id"`
	ActivityID uuid.UUID   `json:"activity_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Publisher fans an event out to every subscriber of a topic.
// Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event)
}
