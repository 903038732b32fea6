package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeItemSoftDeleted Type = "item.soft_deleted"
	TypeItemRestored    Type = "item.restored"
	TypeItemPurged      Type = "item.purged"
	TypeOrphansSwept    Type = "uploads.orphans_swept"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"` // Who triggered the event
}

// ItemPayload identifies the record a lifecycle event is about.
type ItemPayload struct {
	ItemType string `json:"item_type"`
	ItemID   string `json:"item_id"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}

func New(t Type, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:   actorID,
	}
}
