package services

import (
	"context"
	"time"

	"braincore/application/ports"
	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	"braincore/domain/events"
	pkgerrors "braincore/pkg/errors"
	"braincore/pkg/observability"

	"go.uber.org/zap"
)

// FormResult is what one FormMemory call produced and persisted
type FormResult struct {
	Memory  entities.Memory
	Contact *entities.Contact
	Edge    *entities.Edge
}

// MemoryFormer turns inbound typed documents into persisted memory
// nodes and relationship edges. Each call is internally sequential:
// contact upsert, then memory insert, then edge insert. Persistence
// failures propagate to the caller; there is no retry.
type MemoryFormer struct {
	store     ports.DocumentStore
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewMemoryFormer creates a memory former. publisher may be nil when
// no event bus is configured.
func NewMemoryFormer(
	store ports.DocumentStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MemoryFormer {
	return &MemoryFormer{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// FormMemory dispatches on the document variant and persists the
// resulting memory node (and edge, for attributed emails) before
// returning.
func (f *MemoryFormer) FormMemory(ctx context.Context, doc entities.Document) (*FormResult, error) {
	switch d := doc.(type) {
	case entities.EmailDocument:
		return f.formEmail(ctx, d)
	case entities.ContactDocument:
		return f.formContact(ctx, d)
	case entities.TaskDocument:
		return f.formTask(ctx, d)
	case entities.GenericDocument:
		return f.formGeneric(ctx, d)
	default:
		return nil, pkgerrors.NewValidationError("unsupported document variant")
	}
}

func (f *MemoryFormer) formEmail(ctx context.Context, doc entities.EmailDocument) (*FormResult, error) {
	now := f.now()

	memory, err := entities.NewEmailMemory(doc, now)
	if err != nil {
		return nil, err
	}

	// Contact attribution runs first; an unresolvable sender skips
	// the contact and edge but the email is still memorized.
	contact, created, err := f.DeduplicateContact(ctx, doc.From)
	if err != nil {
		return nil, err
	}

	if err := f.store.InsertOne(ctx, memory); err != nil {
		return nil, err
	}

	result := &FormResult{Memory: memory, Contact: contact}
	formed := []events.DomainEvent{
		events.NewMemoryFormed(memory.ID, memory.Kind, now),
	}

	if contact != nil {
		edge := entities.NewEdge(contact.ID, memory.ID, entities.RelationSent, now)
		if err := f.store.InsertOne(ctx, edge); err != nil {
			return nil, err
		}
		result.Edge = edge

		formed = append(formed,
			events.NewContactObserved(contact.ID, contact.Email, created, now),
			events.NewEdgeLinked(edge.ID, edge.SourceID, edge.TargetID, edge.RelationType, now),
		)

		if !created {
			f.metrics.ContactDeduplicated(ctx)
		}
	} else {
		f.logger.Info("Email memorized without contact attribution",
			zap.String("memoryID", memory.ID),
			zap.String("from", doc.From.Raw),
		)
	}

	f.metrics.MemoryFormed(ctx, memory.Kind.String())
	f.publish(ctx, formed)

	f.logger.Info("Formed email memory",
		zap.String("memoryID", memory.ID),
		zap.String("importance", string(memory.Importance)),
		zap.Bool("attributed", contact != nil),
	)
	return result, nil
}

// DeduplicateContact resolves the sender to its single contact node.
// A nil contact with nil error means the address could not be
// resolved; the returned contact carries the message count as it was
// BEFORE this message when the contact already existed.
func (f *MemoryFormer) DeduplicateContact(ctx context.Context, sender valueobjects.Sender) (*entities.Contact, bool, error) {
	now := f.now()

	candidate, err := entities.NewContactFromSender(sender, now)
	if err != nil {
		// No resolvable address: recoverable, no contact, no edge
		return nil, false, nil
	}

	contact, created, err := f.store.UpsertContact(ctx, candidate)
	if err != nil {
		return nil, false, err
	}

	if created {
		f.logger.Info("Created contact",
			zap.String("contactID", contact.ID),
			zap.String("email", contact.Email),
		)
	} else {
		f.logger.Debug("Deduplicated contact",
			zap.String("contactID", contact.ID),
			zap.String("email", contact.Email),
			zap.Int("priorMessageCount", contact.MessageCount),
		)
	}
	return contact, created, nil
}

func (f *MemoryFormer) formContact(ctx context.Context, doc entities.ContactDocument) (*FormResult, error) {
	now := f.now()

	contact, err := entities.NewContactFromDocument(doc, now)
	if err != nil {
		return nil, err
	}

	if err := f.store.InsertOne(ctx, contact); err != nil {
		return nil, err
	}

	f.metrics.MemoryFormed(ctx, contact.Kind.String())
	f.publish(ctx, []events.DomainEvent{
		events.NewMemoryFormed(contact.ID, contact.Kind, now),
		events.NewContactObserved(contact.ID, contact.Email, true, now),
	})

	return &FormResult{Memory: contact, Contact: contact}, nil
}

func (f *MemoryFormer) formTask(ctx context.Context, doc entities.TaskDocument) (*FormResult, error) {
	now := f.now()

	task, err := entities.NewTaskMemory(doc, now)
	if err != nil {
		return nil, err
	}

	if err := f.store.InsertOne(ctx, task); err != nil {
		return nil, err
	}

	f.metrics.MemoryFormed(ctx, task.Kind.String())
	f.publish(ctx, []events.DomainEvent{
		events.NewMemoryFormed(task.ID, task.Kind, now),
	})

	return &FormResult{Memory: task}, nil
}

func (f *MemoryFormer) formGeneric(ctx context.Context, doc entities.GenericDocument) (*FormResult, error) {
	if doc.DocumentKind == "" || doc.DocumentKind.IsWellKnown() {
		return nil, pkgerrors.NewValidationError("generic documents need a kind outside the well-known set")
	}

	now := f.now()
	memory := entities.NewGenericMemory(doc, now)

	if err := f.store.InsertOne(ctx, memory); err != nil {
		return nil, err
	}

	f.metrics.MemoryFormed(ctx, memory.Kind.String())
	f.publish(ctx, []events.DomainEvent{
		events.NewMemoryFormed(memory.ID, memory.Kind, now),
	})

	return &FormResult{Memory: memory}, nil
}

// publish is best effort: formation already succeeded, so a bus
// failure only gets logged.
func (f *MemoryFormer) publish(ctx context.Context, batch []events.DomainEvent) {
	if f.publisher == nil || len(batch) == 0 {
		return
	}
	if err := f.publisher.PublishBatch(ctx, batch); err != nil {
		f.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
	}
}
