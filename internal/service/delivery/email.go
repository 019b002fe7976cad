package delivery

import (
	"context"
	"errors"
	"strings"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/email"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	client     *email.Client
	branding   email.Branding
	recipients store.Recipients
}

func NewEmailSender(client *email.Client, branding email.Branding, recipients store.Recipients) *EmailSender {
	return &EmailSender{client: client, branding: branding, recipients: recipients}
}

func (s *EmailSender) Channel() model.Channel { return model.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, n *model.Notification, d *model.DeliveryLog) Result {
	name := ""
	if contact, err := s.recipients.Contact(ctx, n.Recipient()); err == nil {
		name = contact.Name
	}

	msg := email.BuildNotificationEmail(s.branding, email.NotificationEmailData{
		RecipientName: name,
		Email:         d.Recipient,
		Title:         n.Title,
		Body:          n.Body,
		ActionURL:     actionURL(s.branding.BaseURL, n),
	})

	err := s.client.Send(ctx, msg)
	if err == nil {
		return Result{Outcome: OutcomeSent}
	}
	return Result{Outcome: classifyEmailErr(err), Err: err}
}

func classifyEmailErr(err error) Outcome {
	var disabled email.ErrDisabled
	if errors.As(err, &disabled) {
		return OutcomeSkipped
	}
	var invalid email.ErrInvalidMessage
	if errors.As(err, &invalid) {
		return OutcomePermanent
	}
	if isBounce(err) {
		return OutcomeBounced
	}
	// Connection failures, timeouts and 4xx responses all retry.
	return OutcomeRetryable
}

// isBounce sniffs SMTP 5xx recipient rejections out of the transport error.
func isBounce(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"550", "551", "553",
		"no such user",
		"user unknown",
		"mailbox unavailable",
		"recipient address rejected",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func actionURL(baseURL string, n *model.Notification) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/notifications/" + n.ID.String()
}
