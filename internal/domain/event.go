package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a MapEvent.
type EventType string

const (
	EventRegionSelected    EventType = "region.selected"
	EventRegionUnsupported EventType = "region.unsupported"
	EventWeatherViewed     EventType = "weather.viewed"
	EventWeatherNotFound   EventType = "weather.not_found"
	EventWeatherFailed     EventType = "weather.failed"
)

// MapEvent records a user interaction for downstream analytics.
type MapEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Region     string    `json:"region,omitempty"`
	Locality   string    `json:"locality,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMapEvent stamps an event with a fresh ID and the package clock.
func NewMapEvent(typ EventType, region, locality string) MapEvent {
	return MapEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Region:     region,
		Locality:   locality,
		OccurredAt: Now().UTC(),
	}
}

// Selection is emitted when the user clicks a region on the map.
type Selection struct {
	Region string
}

// EventPublisher accepts map events for asynchronous delivery. Publish must not
// block on the transport.
type EventPublisher interface {
	Publish(ctx context.Context, e MapEvent)
}
