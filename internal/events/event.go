package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated EventType = "created"
)

// Event is a ledger change notification
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string            `json:"type"`    // Combined type e.g. "transaction.created"
	Entity    domain.EntityKind `json:"entity"`  // e.g. "transaction"
	Payload   interface{}       `json:"payload"` // Full entity data
	Timestamp time.Time         `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entity domain.EntityKind, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entity, eventType),
		Entity:    entity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Created creates an <entity>.created event
func Created(entity domain.EntityKind, payload interface{}) Event {
	return NewEvent(EventTypeCreated, entity, payload)
}
