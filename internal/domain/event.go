package domain

import (
	"encoding/json"
	"time"
)

// EventID is a unique identifier for an event.
type EventID string

// String returns the string representation of the EventID.
func (id EventID) String() string {
	return string(id)
}

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	EventSeverityInfo    EventSeverity = "info"
	EventSeverityWarning EventSeverity = "warning"
	EventSeverityError   EventSeverity = "error"
	EventSeveritySuccess EventSeverity = "success"
)

// EventCategory represents the category of an event for filtering.
type EventCategory string

const (
	EventCategoryResolve  EventCategory = "resolve"
	EventCategoryDownload EventCategory = "download"
	EventCategorySession  EventCategory = "session"
	EventCategorySystem   EventCategory = "system"
)

// Event is one entry of the activity log.
type Event struct {
	ID        EventID         `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Severity  EventSeverity   `json:"severity"`
	Category  EventCategory   `json:"category"`
	Message   string          `json:"message"`
	Source    string          `json:"source,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// EventMetadata is a helper type for building event metadata.
type EventMetadata map[string]interface{}

// ToJSON converts metadata to JSON for storage.
func (m EventMetadata) ToJSON() json.RawMessage {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return data
}

// EventFilter specifies criteria for querying events.
type EventFilter struct {
	Severity *EventSeverity `json:"severity,omitempty"`
	Category *EventCategory `json:"category,omitempty"`
	Source   string         `json:"source,omitempty"`
}

// Matches reports whether e passes the filter.
func (f EventFilter) Matches(e Event) bool {
	if f.Severity != nil && e.Severity != *f.Severity {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	return true
}

// EventEmitter is the interface for components that emit events.
type EventEmitter interface {
	Emit(event Event)
}

// EventQuery represents a query for events with pagination.
type EventQuery struct {
	Filter EventFilter `json:"filter"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// EventQueryResult contains the result of an event query.
type EventQueryResult struct {
	Events  []Event `json:"events"`
	Total   int     `json:"total"`
	HasMore bool    `json:"has_more"`
}
