package sms

import (
	"errors"
	"fmt"
	"strings"
)

type ErrDisabled struct{}

func (e ErrDisabled) Error() string { return "sms is disabled" }

// ErrInvalidNumber marks a permanently unsendable number. Never retried.
type ErrInvalidNumber struct {
	Number string
	Reason string
}

func (e ErrInvalidNumber) Error() string {
	return fmt.Sprintf("invalid phone number %q: %s", e.Number, e.Reason)
}

// ErrOptedOut marks a recipient the gateway refuses to message.
type ErrOptedOut struct{ Number string }

func (e ErrOptedOut) Error() string { return fmt.Sprintf("recipient %s opted out", e.Number) }

// ErrThrottled marks a transient gateway rejection worth retrying.
type ErrThrottled struct{ Err error }

func (e ErrThrottled) Error() string { return fmt.Sprintf("sms gateway throttled: %v", e.Err) }
func (e ErrThrottled) Unwrap() error { return e.Err }

// ErrSend wraps any other gateway failure.
type ErrSend struct{ Err error }

func (e ErrSend) Error() string { return fmt.Sprintf("sms send failed: %v", e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }

// classify maps raw gateway errors onto the typed taxonomy. The sms.ir client
// surfaces HTTP-level failures as plain errors, so matching is by message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many") || strings.Contains(msg, "throttle"):
		return ErrThrottled{Err: err}
	case strings.Contains(msg, "blacklist") || strings.Contains(msg, "opted out") || strings.Contains(msg, "unsubscribed"):
		return ErrOptedOut{}
	case strings.Contains(msg, "invalid mobile") || strings.Contains(msg, "invalid number"):
		return ErrInvalidNumber{Reason: err.Error()}
	default:
		return ErrSend{Err: err}
	}
}

// IsPermanent reports whether the error should never be retried.
func IsPermanent(err error) bool {
	var inv ErrInvalidNumber
	var opt ErrOptedOut
	return errors.As(err, &inv) || errors.As(err, &opt)
}
