package events

import (
	"time"

	"braincore/domain/core/valueobjects"
)

// SourceService identifies this service on the event bus
const SourceService = "braincore"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// MemoryFormed is raised after a memory node has been persisted
type MemoryFormed struct {
	BaseEvent
	MemoryID string            `json:"memory_id"`
	Kind     valueobjects.Kind `json:"kind"`
}

// NewMemoryFormed creates a MemoryFormed event
func NewMemoryFormed(memoryID string, kind valueobjects.Kind, timestamp time.Time) MemoryFormed {
	return MemoryFormed{
		BaseEvent: BaseEvent{
			AggregateID: memoryID,
			EventType:   "memory.formed",
			Timestamp:   timestamp,
		},
		MemoryID: memoryID,
		Kind:     kind,
	}
}

// ContactObserved is raised when an inbound message is attributed to a
// contact, whether the contact was created or its counters incremented
type ContactObserved struct {
	BaseEvent
	ContactID string `json:"contact_id"`
	Email     string `json:"email"`
	Created   bool   `json:"created"`
}

// NewContactObserved creates a ContactObserved event
func NewContactObserved(contactID, email string, created bool, timestamp time.Time) ContactObserved {
	return ContactObserved{
		BaseEvent: BaseEvent{
			AggregateID: contactID,
			EventType:   "contact.observed",
			Timestamp:   timestamp,
		},
		ContactID: contactID,
		Email:     email,
		Created:   created,
	}
}

// EdgeLinked is raised after a relationship edge has been persisted
type EdgeLinked struct {
	BaseEvent
	EdgeID       string `json:"edge_id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	RelationType string `json:"relation_type"`
}

// NewEdgeLinked creates an EdgeLinked event
func NewEdgeLinked(edgeID, sourceID, targetID, relationType string, timestamp time.Time) EdgeLinked {
	return EdgeLinked{
		BaseEvent: BaseEvent{
			AggregateID: edgeID,
			EventType:   "edge.linked",
			Timestamp:   timestamp,
		},
		EdgeID:       edgeID,
		SourceID:     sourceID,
		TargetID:     targetID,
		RelationType: relationType,
	}
}
