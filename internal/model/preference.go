package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference holds per-recipient delivery preferences. Created
// lazily with defaults on the first notification if absent.
type NotificationPreference struct {
	ID            uuid.UUID     `json:"id"`
	RecipientKind RecipientKind `json:"recipient_kind"`
	RecipientID   uuid.UUID     `json:"recipient_id"`

	EmailEnabled bool `json:"email_enabled"`
	SMSEnabled   bool `json:"sms_enabled"`
	InAppEnabled bool `json:"in_app_enabled"`

	// Categories maps category → enabled. A missing key means enabled.
	Categories map[Category]bool `json:"categories"`

	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start"` // "HH:MM" wall clock
	QuietHoursEnd     string `json:"quiet_hours_end"`   // "HH:MM" wall clock

	DailyDigest bool `json:"daily_digest"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPreference returns the defaults applied when a recipient has never
// saved preferences: every channel on, no opt-outs, no quiet hours.
func DefaultPreference(r Recipient) *NotificationPreference {
	return &NotificationPreference{
		ID:            NewID(),
		RecipientKind: r.Kind,
		RecipientID:   r.ID,
		EmailEnabled:  true,
		SMSEnabled:    true,
		InAppEnabled:  true,
		Categories:    map[Category]bool{},
	}
}

// ChannelEnabled reports the global toggle for a channel.
func (p *NotificationPreference) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelInApp:
		return p.InAppEnabled
	}
	return false
}

// CategoryEnabled reports whether the recipient accepts a category.
func (p *NotificationPreference) CategoryEnabled(c Category) bool {
	if p.Categories == nil {
		return true
	}
	enabled, ok := p.Categories[c]
	if !ok {
		return true
	}
	return enabled
}
