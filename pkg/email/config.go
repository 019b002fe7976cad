package email

import (
	"time"

	"github.com/paneworks/glassdesk_backend/config"
)

// Config holds email service configuration
type Config struct {
	Enabled bool
	From    string

	// SMTP settings
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int
}

// Branding holds the values used to render branded email bodies. A Branding
// value is passed explicitly into each render call.
type Branding struct {
	AppName      string
	BaseURL      string
	SupportEmail string
	PrimaryColor string
	LogoURL      string
}

// DefaultConfig returns sensible defaults for email configuration
func DefaultConfig() Config {
	return Config{
		Enabled:            false,
		SMTPPort:           587,
		SMTPUseTLS:         true,
		SMTPTimeoutSeconds: 30,
	}
}

// DefaultBranding returns the fallback branding used when config is empty.
func DefaultBranding() Branding {
	return Branding{
		AppName:      "GlassDesk",
		PrimaryColor: "#2563eb",
	}
}

// SMTPTimeout returns the SMTP timeout as a duration
func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// FromCentralConfig converts central config.EmailConfig to package Config
func FromCentralConfig(c config.EmailConfig) Config {
	return Config{
		Enabled:            c.Enabled,
		From:               c.From,
		SMTPHost:           c.SMTP.Host,
		SMTPPort:           c.SMTP.Port,
		SMTPUsername:       c.SMTP.Username,
		SMTPPassword:       c.SMTP.Password,
		SMTPUseTLS:         c.SMTP.UseTLS,
		SMTPTimeoutSeconds: c.SMTP.TimeoutSeconds,
	}
}

// BrandingFromCentral converts central config.BrandingConfig to a Branding
// value, filling defaults for anything unset.
func BrandingFromCentral(c config.BrandingConfig) Branding {
	b := Branding{
		AppName:      c.AppName,
		BaseURL:      c.BaseURL,
		SupportEmail: c.SupportEmail,
		PrimaryColor: c.PrimaryColor,
		LogoURL:      c.LogoURL,
	}
	def := DefaultBranding()
	if b.AppName == "" {
		b.AppName = def.AppName
	}
	if b.PrimaryColor == "" {
		b.PrimaryColor = def.PrimaryColor
	}
	return b
}
