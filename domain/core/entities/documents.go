package entities

import (
	"time"

	"braincore/domain/core/valueobjects"
)

// Document is the closed union of inbound shapes the memory former
// accepts. Each variant tags itself with the kind it will produce;
// anything without a dedicated variant travels as a GenericDocument.
type Document interface {
	DocKind() valueobjects.Kind
}

// EmailDocument is one parsed inbound message as delivered by the
// mail collaborator.
type EmailDocument struct {
	From      valueobjects.Sender
	To        []string
	Subject   string
	Text      string
	HTML      string
	Date      time.Time
	MessageID string
	Folder    string
	Flags     []string
}

func (EmailDocument) DocKind() valueobjects.Kind { return valueobjects.KindEmail }

// ContactDocument describes a correspondent directly
type ContactDocument struct {
	Email     string
	Address   string
	Name      string
	FirstName string
	LastName  string
}

func (ContactDocument) DocKind() valueobjects.Kind { return valueobjects.KindContact }

// TaskDocument describes a unit of work to remember
type TaskDocument struct {
	Title         string
	Subject       string
	Description   string
	Priority      string
	DueDate       *time.Time
	SourceEmailID string
}

func (TaskDocument) DocKind() valueobjects.Kind { return valueobjects.KindTask }

// GenericDocument carries a free-form field map for any other kind
type GenericDocument struct {
	DocumentKind valueobjects.Kind
	Fields       map[string]interface{}
}

func (d GenericDocument) DocKind() valueobjects.Kind { return d.DocumentKind }
