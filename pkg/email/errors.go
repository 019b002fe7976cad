package email

import "fmt"

// ErrDisabled reports that email sending is switched off in configuration.
// Deliveries hitting this are recorded as skipped rather than failed.
type ErrDisabled struct{}

func (e ErrDisabled) Error() string { return "email is disabled" }

// ErrInvalidMessage reports a message that can never be accepted, such as a
// missing recipient or subject. Not retryable.
type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "invalid email message: " + e.Reason }

// ErrSend wraps a transport failure from the SMTP dialer. The wrapped error
// text carries the server reply, which callers inspect for bounce codes.
type ErrSend struct {
	Provider string
	Err      error
}

func (e ErrSend) Error() string { return fmt.Sprintf("email send failed (%s): %v", e.Provider, e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }
