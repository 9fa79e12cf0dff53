// Package events provides the in-process event bus used for cross-module
// notifications: timeline mutations, descriptor updates, composition results,
// and asset registration.
package events

import (
	"time"
)

// EventType represents the type of event
type EventType string

// System-wide event types
const (
	// Timeline events
	EventTimelineItemAdded   EventType = "timeline.item.added"
	EventTimelineItemMoved   EventType = "timeline.item.moved"
	EventTimelineItemTrimmed EventType = "timeline.item.trimmed"
	EventTimelineItemRemoved EventType = "timeline.item.removed"
	EventTimelineTrackAdded  EventType = "timeline.track.added"

	// Edit descriptor events
	EventEditUpdated EventType = "edit.updated"

	// Composition events
	EventCompositionReady EventType = "composition.ready"

	// Asset events
	EventAssetRegistered EventType = "asset.registered"
	EventAssetRemoved    EventType = "asset.removed"

	// Project events
	EventProjectSaved  EventType = "project.saved"
	EventProjectLoaded EventType = "project.loaded"

	// System events
	EventSystemStarted EventType = "system.started"
	EventSystemStopped EventType = "system.stopped"
)

// EventPriority represents the priority level of an event
type EventPriority int

const (
	PriorityLow      EventPriority = 1
	PriorityNormal   EventPriority = 5
	PriorityHigh     EventPriority = 10
	PriorityCritical EventPriority = 20
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"` // system, module:id, etc.
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Priority  EventPriority          `json:"priority"`
	Tags      []string               `json:"tags"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler represents a function that handles events
type EventHandler func(event Event) error

// EventFilter represents filters for event subscriptions
type EventFilter struct {
	Types   []EventType `json:"types,omitempty"`
	Sources []string    `json:"sources,omitempty"`
	Tags    []string    `json:"tags,omitempty"`
}

// Subscription represents an event subscription
type Subscription struct {
	ID            string       `json:"id"`
	Filter        EventFilter  `json:"filter"`
	Handler       EventHandler `json:"-"`
	Subscriber    string       `json:"subscriber"`
	Created       time.Time    `json:"created"`
	LastTriggered *time.Time   `json:"last_triggered,omitempty"`
	TriggerCount  int64        `json:"trigger_count"`
}

// EventStats represents statistics about events
type EventStats struct {
	TotalEvents         int64            `json:"total_events"`
	EventsByType        map[string]int64 `json:"events_by_type"`
	EventsBySource      map[string]int64 `json:"events_by_source"`
	ActiveSubscriptions int              `json:"active_subscriptions"`
}

// EventBusConfig represents configuration for the event bus
type EventBusConfig struct {
	BufferSize        int           `json:"buffer_size"`
	MaxEventAge       time.Duration `json:"max_event_age"`
	EnablePersistence bool          `json:"enable_persistence"`
}

// DefaultEventBusConfig returns default configuration
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		BufferSize:        1000,
		MaxEventAge:       24 * time.Hour,
		EnablePersistence: true,
	}
}

// NewEvent creates a new event with default values
func NewEvent(eventType EventType, source string, title string, message string) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Title:     title,
		Message:   message,
		Data:      make(map[string]interface{}),
		Priority:  PriorityNormal,
		Tags:      []string{},
		Timestamp: time.Now(),
	}
}

// NewEventWithData creates a new event with structured data
func NewEventWithData(eventType EventType, source string, title string, message string, data map[string]interface{}) Event {
	event := NewEvent(eventType, source, title, message)
	event.Data = data
	return event
}

// MatchesFilter checks if an event matches the given filter
func MatchesFilter(event Event, filter EventFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.Sources) > 0 {
		found := false
		for _, s := range filter.Sources {
			if event.Source == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.Tags) > 0 {
		found := false
		for _, filterTag := range filter.Tags {
			for _, eventTag := range event.Tags {
				if eventTag == filterTag {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// FilterEvents filters a slice of events based on the filter
func FilterEvents(events []Event, filter EventFilter) []Event {
	var filtered []Event
	for _, event := range events {
		if MatchesFilter(event, filter) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
