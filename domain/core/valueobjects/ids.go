package valueobjects

import "github.com/google/uuid"

// NewMemoryID creates a new globally unique memory node identifier
func NewMemoryID() string {
	return uuid.New().String()
}

// NewEdgeID creates a new edge identifier
func NewEdgeID() string {
	return uuid.New().String()
}

// IsValidID validates that a string is a well-formed identifier
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
