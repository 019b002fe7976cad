package queue

import (
	"fmt"

	"github.com/google/uuid"
)

// SubjectPrefix is the root of every subject this service publishes.
const SubjectPrefix = "glassdesk"

// Task is the wire payload for one delivery nudge. It carries identifiers
// only; the delivery_logs row is the source of truth for the attempt.
type Task struct {
	DeliveryID     uuid.UUID `json:"delivery_id"`
	NotificationID uuid.UUID `json:"notification_id"`
	Channel        string    `json:"channel"`
}

// DeliverySubject returns the per-channel subject, e.g.
// "glassdesk.delivery.email".
func DeliverySubject(channel string) string {
	return fmt.Sprintf("%s.delivery.%s", SubjectPrefix, channel)
}
