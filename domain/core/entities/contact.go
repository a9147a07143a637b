package entities

import (
	"time"

	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"
)

// Contact is the memory node representing one known correspondent.
// At most one contact exists per normalized email address; repeat
// messages mutate the counters in place instead of creating nodes.
type Contact struct {
	ID           string            `json:"id" dynamodbav:"id"`
	Kind         valueobjects.Kind `json:"kind" dynamodbav:"kind"`
	Email        string            `json:"email" dynamodbav:"email"`
	FirstName    string            `json:"firstName,omitempty" dynamodbav:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty" dynamodbav:"lastName,omitempty"`
	FullName     string            `json:"fullName,omitempty" dynamodbav:"fullName,omitempty"`
	MessageCount int               `json:"messageCount" dynamodbav:"messageCount"`
	LastSeen     time.Time         `json:"lastSeen" dynamodbav:"lastSeen"`
	UpdatedAt    time.Time         `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewContactFromSender builds the first contact node for a sender
func NewContactFromSender(sender valueobjects.Sender, now time.Time) (*Contact, error) {
	email, ok := sender.NormalizedEmail()
	if !ok {
		return nil, pkgerrors.NewValidationError("sender carries no resolvable address")
	}

	first, last := sender.SplitName()
	return &Contact{
		ID:           valueobjects.NewMemoryID(),
		Kind:         valueobjects.KindContact,
		Email:        email,
		FirstName:    first,
		LastName:     last,
		FullName:     sender.FullName(),
		MessageCount: 1,
		LastSeen:     now,
		UpdatedAt:    now,
	}, nil
}

// NewContactFromDocument builds a contact directly from a contact
// document. This is the first-pass path: no dedup check runs here,
// callers needing dedup go through the email path.
func NewContactFromDocument(doc ContactDocument, now time.Time) (*Contact, error) {
	address := doc.Email
	if address == "" {
		address = doc.Address
	}
	if address == "" {
		return nil, pkgerrors.NewValidationError("contact document must carry an email or address")
	}

	sender := valueobjects.SenderFromParts(doc.Name, address)
	if doc.FirstName != "" || doc.LastName != "" {
		contact, err := NewContactFromSender(sender, now)
		if err != nil {
			return nil, err
		}
		contact.FirstName = doc.FirstName
		contact.LastName = doc.LastName
		// Without a display name the sender falls back to the email
		// local part; the explicit parts are the better source then.
		if doc.Name == "" {
			contact.FullName = joinName(doc.FirstName, doc.LastName)
		}
		return contact, nil
	}
	return NewContactFromSender(sender, now)
}

func (c *Contact) MemoryID() string              { return c.ID }
func (c *Contact) MemoryKind() valueobjects.Kind { return c.Kind }

// Observed applies one attributed inbound message to the contact
func (c *Contact) Observed(now time.Time) {
	c.MessageCount++
	c.LastSeen = now
	c.UpdatedAt = now
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	if first == "" {
		return last
	}
	return first + " " + last
}
