// Package store provides the postgres persistence layer for the notification
// subsystem. Interfaces are declared here so that services and workers share
// one contract and tests can substitute in-memory fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

var ErrNotFound = errors.New("store: not found")

// Notifications persists notification rows.
type Notifications interface {
	Create(ctx context.Context, n *model.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, r model.Recipient, unreadOnly bool, page, perPage int) ([]*model.Notification, error)
	SetRead(ctx context.Context, id uuid.UUID, at time.Time) error
	SetUnread(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, r model.Recipient, at time.Time) error
	SetChannelSent(ctx context.Context, id uuid.UUID, ch model.Channel) error
	Counts(ctx context.Context, r model.Recipient) (model.NotificationCounts, error)
	ChannelRates(ctx context.Context, r model.Recipient) (map[model.Channel]model.ChannelRate, error)
	UnreadSince(ctx context.Context, r model.Recipient, since time.Time) ([]*model.Notification, error)
}

// Deliveries persists delivery log rows. Claim is the concurrency gate: the
// conditional update serializes the retry chain per (notification, channel).
type Deliveries interface {
	Create(ctx context.Context, d *model.DeliveryLog) error
	Get(ctx context.Context, id uuid.UUID) (*model.DeliveryLog, error)
	History(ctx context.Context, notificationID uuid.UUID) ([]*model.DeliveryLog, error)
	Claim(ctx context.Context, id uuid.UUID) (*model.DeliveryLog, bool, error)
	RecordOutcome(ctx context.Context, id uuid.UUID, status model.DeliveryStatus, errMsg *string, cost *float64, nextAttemptAt *time.Time) error
	Due(ctx context.Context, limit int) ([]*model.DeliveryLog, error)
	ReapStale(ctx context.Context, olderThan time.Duration) (int, error)
	Requeue(ctx context.Context, id uuid.UUID, extraAttempts int) (*model.DeliveryLog, bool, error)
	Suppress(ctx context.Context, id uuid.UUID) error
	ListAdmin(ctx context.Context, f AdminFilter) ([]*model.DeliveryLog, error)
}

// AdminFilter narrows the operator delivery listing.
type AdminFilter struct {
	Status  model.DeliveryStatus
	Channel model.Channel
	Page    int
	PerPage int
}

// Preferences persists per-recipient notification preferences.
type Preferences interface {
	Get(ctx context.Context, r model.Recipient) (*model.NotificationPreference, error)
	Upsert(ctx context.Context, p *model.NotificationPreference) error
	ListDigestEnabled(ctx context.Context) ([]*model.NotificationPreference, error)
}

// Recipients resolves contact data for the polymorphic recipient reference.
type Recipients interface {
	Contact(ctx context.Context, r model.Recipient) (*model.Contact, error)
}
