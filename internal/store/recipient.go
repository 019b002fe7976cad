package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/pkg/database"
)

type RecipientStore struct {
	db *sql.DB
}

func NewRecipientStore(db *database.DB) *RecipientStore {
	return &RecipientStore{db: db.GetConnection()}
}

// Contact resolves the polymorphic recipient reference to a name and the
// addresses the channels deliver to. Either address may be empty.
func (s *RecipientStore) Contact(ctx context.Context, r model.Recipient) (*model.Contact, error) {
	var query string
	switch r.Kind {
	case model.RecipientTechnician:
		query = `SELECT full_name, email, phone FROM technicians WHERE id = $1`
	case model.RecipientCustomer:
		query = `SELECT full_name, email, phone FROM customers WHERE id = $1`
	default:
		return nil, fmt.Errorf("unknown recipient kind %q", r.Kind)
	}

	var c model.Contact
	err := s.db.QueryRowContext(ctx, query, r.ID).Scan(&c.Name, &c.Email, &c.Phone)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting %s contact: %w", r.Kind, err)
	}
	return &c, nil
}
