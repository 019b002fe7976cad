package delivery

import (
	"context"
	"errors"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/pkg/sms"
)

// SMSSender delivers notifications through the SMS gateway.
type SMSSender struct {
	client  *sms.Client
	appName string
}

func NewSMSSender(client *sms.Client, appName string) *SMSSender {
	return &SMSSender{client: client, appName: appName}
}

func (s *SMSSender) Channel() model.Channel { return model.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, n *model.Notification, d *model.DeliveryLog) Result {
	number, err := sms.ValidateNumber(d.Recipient)
	if err != nil {
		return Result{Outcome: OutcomePermanent, Err: err}
	}

	text := BuildSMSText(s.appName, n.Title, n.Body)
	cost, err := s.client.Send(ctx, number, text)
	if err == nil {
		return Result{Outcome: OutcomeSent, Cost: &cost}
	}
	return Result{Outcome: classifySMSErr(err), Err: err}
}

func classifySMSErr(err error) Outcome {
	var disabled sms.ErrDisabled
	if errors.As(err, &disabled) {
		return OutcomeSkipped
	}
	var opted sms.ErrOptedOut
	if errors.As(err, &opted) {
		return OutcomeOptedOut
	}
	var invalid sms.ErrInvalidNumber
	if errors.As(err, &invalid) {
		return OutcomePermanent
	}
	// Throttling and generic gateway failures retry.
	return OutcomeRetryable
}
