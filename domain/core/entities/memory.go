package entities

import (
	"encoding/json"
	"strings"
	"time"

	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"
)

// Importance is the derived priority of an email memory
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceNormal Importance = "normal"
)

// TaskStatus represents the lifecycle state of a task memory
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
)

// Memory is the common contract of every persisted memory node.
// Nodes are never deleted; contacts mutate in place, emails and tasks
// are superseded by newer nodes.
type Memory interface {
	MemoryID() string
	MemoryKind() valueobjects.Kind
}

// EmailMemory is an immutable snapshot of one inbound message
type EmailMemory struct {
	ID         string            `json:"id" dynamodbav:"id"`
	Kind       valueobjects.Kind `json:"kind" dynamodbav:"kind"`
	From       string            `json:"from" dynamodbav:"from"`
	FromName   string            `json:"fromName,omitempty" dynamodbav:"fromName,omitempty"`
	To         []string          `json:"to,omitempty" dynamodbav:"to,omitempty"`
	Subject    string            `json:"subject" dynamodbav:"subject"`
	Body       string            `json:"body,omitempty" dynamodbav:"body,omitempty"`
	HTML       string            `json:"html,omitempty" dynamodbav:"html,omitempty"`
	ReceivedAt time.Time         `json:"receivedAt" dynamodbav:"receivedAt"`
	Folder     string            `json:"folder,omitempty" dynamodbav:"folder,omitempty"`
	Flags      []string          `json:"flags,omitempty" dynamodbav:"flags,omitempty"`
	Importance Importance        `json:"importance" dynamodbav:"importance"`
	UpdatedAt  time.Time         `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewEmailMemory builds an email memory from an inbound email document
func NewEmailMemory(doc EmailDocument, now time.Time) (*EmailMemory, error) {
	if doc.From.Address == "" && doc.From.Raw == "" {
		return nil, pkgerrors.NewValidationError("email document must carry a sender")
	}

	received := doc.Date
	if received.IsZero() {
		received = now
	}

	return &EmailMemory{
		ID:         valueobjects.NewMemoryID(),
		Kind:       valueobjects.KindEmail,
		From:       doc.From.Raw,
		FromName:   doc.From.Name,
		To:         doc.To,
		Subject:    doc.Subject,
		Body:       doc.Text,
		HTML:       doc.HTML,
		ReceivedAt: received,
		Folder:     doc.Folder,
		Flags:      doc.Flags,
		Importance: DeriveImportance(doc.Subject),
		UpdatedAt:  now,
	}, nil
}

// DeriveImportance marks a message high when the subject signals urgency
func DeriveImportance(subject string) Importance {
	if strings.Contains(strings.ToLower(subject), "urgent") {
		return ImportanceHigh
	}
	return ImportanceNormal
}

func (m *EmailMemory) MemoryID() string              { return m.ID }
func (m *EmailMemory) MemoryKind() valueobjects.Kind { return m.Kind }

// TaskMemory is a remembered unit of work
type TaskMemory struct {
	ID            string            `json:"id" dynamodbav:"id"`
	Kind          valueobjects.Kind `json:"kind" dynamodbav:"kind"`
	Title         string            `json:"title" dynamodbav:"title"`
	Description   string            `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Status        TaskStatus        `json:"status" dynamodbav:"status"`
	Priority      string            `json:"priority,omitempty" dynamodbav:"priority,omitempty"`
	DueDate       *time.Time        `json:"dueDate,omitempty" dynamodbav:"dueDate,omitempty"`
	SourceEmailID string            `json:"sourceEmailId,omitempty" dynamodbav:"sourceEmailId,omitempty"`
	Completed     bool              `json:"completed" dynamodbav:"completed"`
	UpdatedAt     time.Time         `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewTaskMemory builds a pending task memory
func NewTaskMemory(doc TaskDocument, now time.Time) (*TaskMemory, error) {
	title := doc.Title
	if title == "" {
		title = doc.Subject
	}
	if title == "" {
		return nil, pkgerrors.NewValidationError("task document must carry a title")
	}

	return &TaskMemory{
		ID:            valueobjects.NewMemoryID(),
		Kind:          valueobjects.KindTask,
		Title:         title,
		Description:   doc.Description,
		Status:        TaskStatusPending,
		Priority:      doc.Priority,
		DueDate:       doc.DueDate,
		SourceEmailID: doc.SourceEmailID,
		Completed:     false,
		UpdatedAt:     now,
	}, nil
}

func (m *TaskMemory) MemoryID() string              { return m.ID }
func (m *TaskMemory) MemoryKind() valueobjects.Kind { return m.Kind }

// GenericMemory carries a free-form field map for kinds without a
// dedicated shape. Supplied fields are shallow-merged next to id, kind
// and updatedAt when serialized.
type GenericMemory struct {
	ID        string
	Kind      valueobjects.Kind
	UpdatedAt time.Time
	Fields    map[string]interface{}
}

// NewGenericMemory builds a generic pass-through memory
func NewGenericMemory(doc GenericDocument, now time.Time) *GenericMemory {
	fields := make(map[string]interface{}, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	return &GenericMemory{
		ID:        valueobjects.NewMemoryID(),
		Kind:      doc.DocumentKind,
		UpdatedAt: now,
		Fields:    fields,
	}
}

func (m *GenericMemory) MemoryID() string              { return m.ID }
func (m *GenericMemory) MemoryKind() valueobjects.Kind { return m.Kind }

// MarshalJSON flattens the field map onto the envelope; id, kind and
// updatedAt always win over colliding supplied fields.
func (m *GenericMemory) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(m.Fields)+3)
	for k, v := range m.Fields {
		flat[k] = v
	}
	flat["id"] = m.ID
	flat["kind"] = m.Kind
	flat["updatedAt"] = m.UpdatedAt
	return json.Marshal(flat)
}

// UnmarshalJSON rebuilds the envelope and puts the remaining keys back
// into the field map.
func (m *GenericMemory) UnmarshalJSON(data []byte) error {
	flat := make(map[string]interface{})
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if id, ok := flat["id"].(string); ok {
		m.ID = id
	}
	if kind, ok := flat["kind"].(string); ok {
		m.Kind = valueobjects.Kind(kind)
	}
	if ts, ok := flat["updatedAt"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.UpdatedAt = parsed
		}
	}
	delete(flat, "id")
	delete(flat, "kind")
	delete(flat, "updatedAt")
	m.Fields = flat
	return nil
}
