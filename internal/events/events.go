// Package events carries session state changes to the TUI, the websocket hub
// and any other observer.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names the kind of an Event.
type Type string

const (
	TypeSessionStarted Type = "SESSION_STARTED"
	TypeSessionEnded   Type = "SESSION_ENDED"
	TypeClockTick      Type = "CLOCK_TICK"
	TypeFeedLoaded     Type = "FEED_LOADED"
	TypeNewsReleased   Type = "NEWS_RELEASED"
	TypeOrderFilled    Type = "ORDER_FILLED"
	// TypeSnapshot is sent to a websocket client right after it connects.
	TypeSnapshot Type = "SNAPSHOT"
)

// Event is a single state change of a user session.
type Event struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
	VirtualDate string    `json:"virtual_date"`
	Payload     any       `json:"payload,omitempty"`
}

// New stamps a fresh event.
func New(typ Type, userID, virtualDate string, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        typ,
		UserID:      userID,
		Timestamp:   time.Now(),
		VirtualDate: virtualDate,
		Payload:     payload,
	}
}

// Publisher accepts events. Publish must not block.
type Publisher interface {
	Publish(ev Event)
}

// Discard is a Publisher that drops everything.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
