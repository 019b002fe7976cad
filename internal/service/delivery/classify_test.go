package delivery

import (
	"errors"
	"testing"

	"github.com/paneworks/glassdesk_backend/pkg/email"
	"github.com/paneworks/glassdesk_backend/pkg/sms"
)

func TestClassifyEmailErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"disabled", email.ErrDisabled{}, OutcomeSkipped},
		{"invalid message", email.ErrInvalidMessage{Reason: "no subject"}, OutcomePermanent},
		{"mailbox bounce", email.ErrSend{Provider: "gomail/smtp", Err: errors.New("550 no such user")}, OutcomeBounced},
		{"rejected recipient", email.ErrSend{Provider: "gomail/smtp", Err: errors.New("Recipient address rejected")}, OutcomeBounced},
		{"connection refused", email.ErrSend{Provider: "gomail/smtp", Err: errors.New("dial tcp: connection refused")}, OutcomeRetryable},
		{"timeout", errors.New("context deadline exceeded"), OutcomeRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyEmailErr(tt.err); got != tt.want {
				t.Errorf("classifyEmailErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifySMSErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"disabled", sms.ErrDisabled{}, OutcomeSkipped},
		{"opted out", sms.ErrOptedOut{Number: "+15550001111"}, OutcomeOptedOut},
		{"invalid number", sms.ErrInvalidNumber{Number: "123", Reason: "too short"}, OutcomePermanent},
		{"throttled", sms.ErrThrottled{Err: errors.New("429")}, OutcomeRetryable},
		{"gateway error", sms.ErrSend{Err: errors.New("internal error")}, OutcomeRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifySMSErr(tt.err); got != tt.want {
				t.Errorf("classifySMSErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
