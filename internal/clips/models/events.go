package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// ClipCommitted is recorded when a clip's catalog row is inserted, after both
// assets landed in blob storage.
type ClipCommitted struct {
	eventID    uuid.UUID
	clipID     uuid.UUID
	ownerID    string
	occurredAt time.Time
}

func NewClipCommitted(clipID uuid.UUID, ownerID string) *ClipCommitted {
	return &ClipCommitted{
		eventID:    uuid.New(),
		clipID:     clipID,
		ownerID:    ownerID,
		occurredAt: time.Now(),
	}
}

func (e *ClipCommitted) EventID() uuid.UUID     { return e.eventID }
func (e *ClipCommitted) EventType() string      { return "ClipCommitted" }
func (e *ClipCommitted) AggregateID() uuid.UUID { return e.clipID }
func (e *ClipCommitted) OccurredAt() time.Time  { return e.occurredAt }
func (e *ClipCommitted) OwnerID() string        { return e.ownerID }

func (e *ClipCommitted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		ClipID     uuid.UUID `json:"clip_id"`
		OwnerID    string    `json:"owner_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		ClipID:     e.clipID,
		OwnerID:    e.ownerID,
		OccurredAt: e.occurredAt,
	})
}

// ClipDeleted is recorded when a clip's catalog row is removed. By then both
// blobs are already gone; consumers only need the identifiers.
type ClipDeleted struct {
	eventID    uuid.UUID
	clipID     uuid.UUID
	ownerID    string
	occurredAt time.Time
}

func NewClipDeleted(clipID uuid.UUID, ownerID string) *ClipDeleted {
	return &ClipDeleted{
		eventID:    uuid.New(),
		clipID:     clipID,
		ownerID:    ownerID,
		occurredAt: time.Now(),
	}
}

func (e *ClipDeleted) EventID() uuid.UUID     { return e.eventID }
func (e *ClipDeleted) EventType() string      { return "ClipDeleted" }
func (e *ClipDeleted) AggregateID() uuid.UUID { return e.clipID }
func (e *ClipDeleted) OccurredAt() time.Time  { return e.occurredAt }
func (e *ClipDeleted) OwnerID() string        { return e.ownerID }

func (e *ClipDeleted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		ClipID     uuid.UUID `json:"clip_id"`
		OwnerID    string    `json:"owner_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		ClipID:     e.clipID,
		OwnerID:    e.ownerID,
		OccurredAt: e.occurredAt,
	})
}
