package entities

import (
	"time"

	"braincore/domain/core/valueobjects"
)

// RelationSent links a contact to an email it sent
const RelationSent = "sent"

// Edge is a directed, typed relationship between two memory nodes.
// Endpoints are not checked against existing nodes at creation time;
// the store stays tolerant of dangling references.
type Edge struct {
	ID           string    `json:"id" dynamodbav:"id"`
	SourceID     string    `json:"sourceId" dynamodbav:"sourceId"`
	TargetID     string    `json:"targetId" dynamodbav:"targetId"`
	RelationType string    `json:"relationType" dynamodbav:"relationType"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// NewEdge creates a directed edge between two node ids
func NewEdge(sourceID, targetID, relationType string, now time.Time) *Edge {
	return &Edge{
		ID:           valueobjects.NewEdgeID(),
		SourceID:     sourceID,
		TargetID:     targetID,
		RelationType: relationType,
		CreatedAt:    now,
	}
}
