package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus tracks one (notification, channel) delivery chain.
type DeliveryStatus string

const (
	DeliveryPending         DeliveryStatus = "pending"
	DeliverySent            DeliveryStatus = "sent"
	DeliveryFailed          DeliveryStatus = "failed"
	DeliveryPendingRetry    DeliveryStatus = "pending_retry"
	DeliveryFailedPermanent DeliveryStatus = "failed_permanent"
	DeliveryBounced         DeliveryStatus = "bounced"
	DeliveryOptedOut        DeliveryStatus = "opted_out"
	DeliverySkipped         DeliveryStatus = "skipped"
)

// IsTerminal reports whether no further attempts occur automatically.
func (s DeliveryStatus) IsTerminal() bool {
	switch s {
	case DeliverySent, DeliveryFailedPermanent, DeliveryBounced, DeliveryOptedOut, DeliverySkipped:
		return true
	}
	return false
}

// DeliveryLog is the audit record for one (notification, channel) pair. The
// row doubles as the durable task record: attempt_number increments on each
// claimed attempt (0 means enqueued but never attempted), next_attempt_at
// drives both retry backoff and quiet-hours deferral.
type DeliveryLog struct {
	ID             uuid.UUID      `json:"id"`
	NotificationID uuid.UUID      `json:"notification_id"`
	Channel        Channel        `json:"channel"`
	Status         DeliveryStatus `json:"status"`
	Recipient      string         `json:"recipient"`
	AttemptNumber  int            `json:"attempt_number"`
	AttemptCap     int            `json:"attempt_cap"`
	LastError      *string        `json:"last_error,omitempty"`
	Cost           *float64       `json:"cost,omitempty"`
	NextAttemptAt  *time.Time     `json:"next_attempt_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NotificationCounts is the aggregate surface for one recipient.
type NotificationCounts struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	Urgent    int `json:"urgent"`
	EmailSent int `json:"email_sent"`
	SMSSent   int `json:"sms_sent"`
}

// ChannelRate is attempts vs confirmed sends for one channel.
type ChannelRate struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
}

// Percent returns the delivery rate as a percentage.
func (r ChannelRate) Percent() float64 {
	if r.Attempted == 0 {
		return 0
	}
	return float64(r.Sent) / float64(r.Attempted) * 100
}
