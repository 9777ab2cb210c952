// internal/domain/models/event.go
package models

// EventKind distinguishes question creation from later mutation.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// QuestionEvent is one mutation delivered by a change feed.
//
// Before is nil for EventCreated. Events are delivered at least once and are
// not persisted by this service.
type QuestionEvent struct {
	Kind   EventKind `json:"type"`
	Before *Question `json:"before,omitempty"`
	After  Question  `json:"after"`
}
