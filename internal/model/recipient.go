package model

import (
	"fmt"

	"github.com/google/uuid"
)

// RecipientKind tags the polymorphic recipient reference. All lookups branch
// explicitly on the tag.
type RecipientKind string

const (
	RecipientTechnician RecipientKind = "technician"
	RecipientCustomer   RecipientKind = "customer"
)

// Recipient identifies either a technician or a customer.
type Recipient struct {
	Kind RecipientKind `json:"kind"`
	ID   uuid.UUID     `json:"id"`
}

func (r Recipient) String() string {
	return string(r.Kind) + "/" + r.ID.String()
}

// ParseRecipientKind validates a kind string.
func ParseRecipientKind(s string) (RecipientKind, error) {
	switch RecipientKind(s) {
	case RecipientTechnician, RecipientCustomer:
		return RecipientKind(s), nil
	}
	return "", fmt.Errorf("unknown recipient kind %q", s)
}

// Contact holds the addressing data needed to reach a recipient.
type Contact struct {
	Name  string
	Email string
	Phone string
}
