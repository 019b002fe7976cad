package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/paneworks/glassdesk_backend/config"
)

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client  *smsir.Client
	cfg     config.SMSConfig
	enabled bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{cfg: cfg, enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:  client,
		cfg:     cfg,
		enabled: true,
	}, nil
}

// ValidateNumber checks that the number parses as a valid E.164 phone number.
// Returns the normalized E.164 form.
func ValidateNumber(number string) (string, error) {
	if number == "" {
		return "", ErrInvalidNumber{Number: number, Reason: "empty"}
	}
	parsed, err := phonenumbers.Parse(number, "")
	if err != nil {
		return "", ErrInvalidNumber{Number: number, Reason: err.Error()}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidNumber{Number: number, Reason: "not a valid number"}
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Send delivers a text message to the given phone number through the gateway
// template. The number must already be in E.164 form (see ValidateNumber).
// Returns the per-message cost on success.
func (c *Client) Send(ctx context.Context, phoneNumber, text string) (float64, error) {
	if !c.enabled {
		// No-op when disabled (useful for development)
		return 0, ErrDisabled{}
	}

	if phoneNumber == "" {
		return 0, ErrInvalidNumber{Number: phoneNumber, Reason: "empty"}
	}
	if text == "" {
		return 0, fmt.Errorf("message text is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: c.cfg.SMSIR.TemplateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "text", Value: text},
		},
	}

	_, err := c.client.Verification.UltraFastSend(ctx, req)
	if err != nil {
		return 0, classify(err)
	}

	return c.cfg.CostPerMessage, nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
