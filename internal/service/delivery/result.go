package delivery

import (
	"context"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

// Outcome classifies one delivery attempt.
type Outcome int

const (
	// OutcomeSent means the channel accepted the message.
	OutcomeSent Outcome = iota
	// OutcomeRetryable means a transient failure worth another attempt.
	OutcomeRetryable
	// OutcomePermanent means the attempt can never succeed, e.g. a
	// malformed address. No retries.
	OutcomePermanent
	// OutcomeBounced means the provider rejected the mailbox.
	OutcomeBounced
	// OutcomeOptedOut means the gateway refuses this recipient.
	OutcomeOptedOut
	// OutcomeSkipped means the channel is disabled in configuration.
	OutcomeSkipped
)

// Result is what a sender reports back for one attempt.
type Result struct {
	Outcome Outcome
	Err     error
	// Cost is the per-message charge when the provider reports one.
	Cost *float64
}

// Sender delivers a notification over one channel.
type Sender interface {
	Channel() model.Channel
	Send(ctx context.Context, n *model.Notification, d *model.DeliveryLog) Result
}

// String is the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeRetryable:
		return "retryable"
	case OutcomePermanent:
		return "permanent"
	case OutcomeBounced:
		return "bounced"
	case OutcomeOptedOut:
		return "opted_out"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// status maps an outcome to the terminal status recorded for it.
// OutcomeRetryable is absent: the dispatcher decides between pending_retry
// and failed based on remaining attempts.
func (o Outcome) status() model.DeliveryStatus {
	switch o {
	case OutcomeSent:
		return model.DeliverySent
	case OutcomePermanent:
		return model.DeliveryFailedPermanent
	case OutcomeBounced:
		return model.DeliveryBounced
	case OutcomeOptedOut:
		return model.DeliveryOptedOut
	case OutcomeSkipped:
		return model.DeliverySkipped
	}
	return model.DeliveryFailed
}
