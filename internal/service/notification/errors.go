package notification

import "errors"

var (
	ErrNotFound          = errors.New("notification not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidCategory   = errors.New("invalid notification category")
	ErrTemplateNotFound  = errors.New("notification template not found")
	ErrInvalidQuietHours = errors.New("invalid quiet hours window")
)
