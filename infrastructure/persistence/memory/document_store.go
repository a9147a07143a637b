// Package memory provides an in-process DocumentStore used by tests
// and local development.
package memory

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"braincore/application/ports"
	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"
)

// DocumentStore is a mutex-guarded map implementation of the
// persistence port. One collection, documents keyed by id.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  map[string]map[string]interface{}
	emailIndex map[string]string // normalized email -> contact document id
}

// NewDocumentStore creates an empty in-memory store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[string]map[string]interface{}),
		emailIndex: make(map[string]string),
	}
}

// InsertOne persists a document keyed by its id field
func (s *DocumentStore) InsertOne(ctx context.Context, doc interface{}) error {
	item, err := toMap(doc)
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to encode document", err)
	}

	id, _ := item["id"].(string)
	if id == "" {
		return pkgerrors.NewValidationError("document must carry an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[id]; exists {
		return pkgerrors.NewConflictError("document id already exists")
	}
	s.documents[id] = item

	if kind, _ := item["kind"].(string); kind == string(valueobjects.KindContact) {
		if email, _ := item["email"].(string); email != "" {
			s.emailIndex[email] = id
		}
	}
	return nil
}

// FindOne decodes the first matching document into out
func (s *DocumentStore) FindOne(ctx context.Context, filter ports.Filter, out interface{}) error {
	match, err := s.findFirst(filter)
	if err != nil {
		return err
	}
	return decodeMap(match, out)
}

// UpdateOne applies the update to the first matching document
func (s *DocumentStore) UpdateOne(ctx context.Context, filter ports.Filter, update ports.Update) error {
	normalized, err := toMap(map[string]interface{}(update))
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to encode update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.matchLocked(filter)
	if !ok {
		return pkgerrors.NewNotFoundError("document")
	}
	for k, v := range normalized {
		item[k] = v
	}
	return nil
}

// Find returns copies of all documents matching the filter
func (s *DocumentStore) Find(ctx context.Context, filter ports.Filter) ([]map[string]interface{}, error) {
	normalized, err := toMap(map[string]interface{}(filter))
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to encode filter", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []map[string]interface{}
	for _, item := range s.documents {
		if matches(item, normalized) {
			results = append(results, copyMap(item))
		}
	}
	return results, nil
}

// CountDocuments counts documents matching the filter
func (s *DocumentStore) CountDocuments(ctx context.Context, filter ports.Filter) (int, error) {
	results, err := s.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// UpsertContact performs the atomic find-or-create keyed by the
// candidate's normalized email. Holding the write lock across the
// lookup and the mutation is what closes the duplicate-contact race.
func (s *DocumentStore) UpsertContact(ctx context.Context, candidate *entities.Contact) (*entities.Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.emailIndex[candidate.Email]; exists {
		item := s.documents[id]

		var prior entities.Contact
		if err := decodeMap(item, &prior); err != nil {
			return nil, false, pkgerrors.NewDatabaseError("failed to decode contact", err)
		}

		item["messageCount"] = prior.MessageCount + 1
		item["lastSeen"] = candidate.LastSeen
		item["updatedAt"] = candidate.UpdatedAt
		if updated, err := toMap(item); err == nil {
			s.documents[id] = updated
		}
		return &prior, false, nil
	}

	item, err := toMap(candidate)
	if err != nil {
		return nil, false, pkgerrors.NewDatabaseError("failed to encode contact", err)
	}
	s.documents[candidate.ID] = item
	s.emailIndex[candidate.Email] = candidate.ID

	inserted := *candidate
	return &inserted, true, nil
}

func (s *DocumentStore) findFirst(filter ports.Filter) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.matchLocked(filter)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("document")
	}
	return copyMap(item), nil
}

func (s *DocumentStore) matchLocked(filter ports.Filter) (map[string]interface{}, bool) {
	normalized, err := toMap(map[string]interface{}(filter))
	if err != nil {
		return nil, false
	}

	// Direct id lookups skip the scan
	if id, ok := normalized["id"].(string); ok && len(normalized) == 1 {
		item, exists := s.documents[id]
		return item, exists
	}

	for _, item := range s.documents {
		if matches(item, normalized) {
			return item, true
		}
	}
	return nil, false
}

func matches(item, filter map[string]interface{}) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(item[k], want) {
			return false
		}
	}
	return true
}

// toMap normalizes any document through JSON so stored values compare
// consistently regardless of the source type
func toMap(doc interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var item map[string]interface{}
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func decodeMap(item map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func copyMap(item map[string]interface{}) map[string]interface{} {
	dup := make(map[string]interface{}, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}
