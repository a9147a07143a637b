package ports

import (
	"context"

	"braincore/domain/core/entities"
)

// Filter matches documents by exact field values
type Filter map[string]interface{}

// Update sets fields on a matched document
type Update map[string]interface{}

// DocumentStore is the persistence port: one collection of mixed
// node and edge documents keyed by id.
// This is a port in hexagonal architecture - the application doesn't
// know about the implementation.
type DocumentStore interface {
	// InsertOne persists a document. The document must carry an id;
	// edge endpoints are not validated against existing nodes.
	InsertOne(ctx context.Context, doc interface{}) error

	// FindOne decodes the first document matching the filter into out.
	// Returns a NOT_FOUND AppError when nothing matches.
	FindOne(ctx context.Context, filter Filter, out interface{}) error

	// UpdateOne applies the update to the first matching document
	UpdateOne(ctx context.Context, filter Filter, update Update) error

	// Find returns all documents matching the filter
	Find(ctx context.Context, filter Filter) ([]map[string]interface{}, error)

	// CountDocuments counts documents matching the filter
	CountDocuments(ctx context.Context, filter Filter) (int, error)

	// UpsertContact atomically finds-or-creates the contact for
	// candidate's normalized email. When the contact already exists its
	// message counter is incremented and lastSeen/updatedAt refreshed,
	// and the PRE-increment contact is returned with created=false.
	// Otherwise candidate is inserted as-is and returned with
	// created=true.
	UpsertContact(ctx context.Context, candidate *entities.Contact) (contact *entities.Contact, created bool, err error)
}
