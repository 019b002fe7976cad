package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies the business event behind a notification.
type Category string

const (
	CategoryRepairStatus   Category = "repair_status"
	CategoryAssignment     Category = "assignment"
	CategoryApproval       Category = "approval"
	CategoryBatchOperation Category = "batch_operation"
	CategoryReward         Category = "reward"
	CategoryOther          Category = "other"
)

// Priority determines the channel fan-out. It is computed once at creation
// time and never changes afterwards.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Channel is a delivery mechanism for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// Notification is a single user-facing event record. The row itself is the
// in-app delivery; email/SMS ride on delivery logs.
type Notification struct {
	ID            uuid.UUID      `json:"id"`
	RecipientKind RecipientKind  `json:"recipient_kind"`
	RecipientID   uuid.UUID      `json:"recipient_id"`
	Category      Category       `json:"category"`
	Priority      Priority       `json:"priority"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	Data          map[string]any `json:"data,omitempty"`
	IsRead        bool           `json:"is_read"`
	ReadAt        *time.Time     `json:"read_at,omitempty"`
	EmailSent     bool           `json:"email_sent"`
	SMSSent       bool           `json:"sms_sent"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (n *Notification) Recipient() Recipient {
	return Recipient{Kind: n.RecipientKind, ID: n.RecipientID}
}

var categoryPriorities = map[Category]Priority{
	CategoryApproval:       PriorityUrgent,
	CategoryAssignment:     PriorityHigh,
	CategoryRepairStatus:   PriorityMedium,
	CategoryReward:         PriorityMedium,
	CategoryBatchOperation: PriorityLow,
	CategoryOther:          PriorityLow,
}

// CategoryPriority returns the fixed priority for a category.
func CategoryPriority(c Category) Priority {
	if p, ok := categoryPriorities[c]; ok {
		return p
	}
	return PriorityLow
}

// ValidCategory reports whether c is one of the enumerated categories.
func ValidCategory(c Category) bool {
	_, ok := categoryPriorities[c]
	return ok
}

// PriorityChannels returns the base channel set attempted for a priority,
// before preference gating:
//
//	urgent → email, sms, in_app
//	high   → sms, in_app
//	medium → email, in_app
//	low    → in_app
func PriorityChannels(p Priority) []Channel {
	switch p {
	case PriorityUrgent:
		return []Channel{ChannelEmail, ChannelSMS, ChannelInApp}
	case PriorityHigh:
		return []Channel{ChannelSMS, ChannelInApp}
	case PriorityMedium:
		return []Channel{ChannelEmail, ChannelInApp}
	default:
		return []Channel{ChannelInApp}
	}
}

// NewID produces a time-ordered UUID for new rows.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}
