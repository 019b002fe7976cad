package sms

import (
	"errors"
	"testing"

	"github.com/paneworks/glassdesk_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: false,
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "",
			SecretKey:  "",
			TemplateID: "test-template",
		},
	}

	_, err := NewFromConfig(cfg)
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			TemplateID: "test-template",
		},
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestValidateNumber(t *testing.T) {
	tests := []struct {
		name        string
		number      string
		expectError bool
		want        string
	}{
		{
			name:   "valid US number",
			number: "+14155552671",
			want:   "+14155552671",
		},
		{
			name:   "valid Iranian number",
			number: "+989121234567",
			want:   "+989121234567",
		},
		{
			name:        "empty number",
			number:      "",
			expectError: true,
		},
		{
			name:        "missing country code",
			number:      "4155552671",
			expectError: true,
		},
		{
			name:        "garbage",
			number:      "not-a-number",
			expectError: true,
		},
		{
			name:        "too short",
			number:      "+1415",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNumber(tt.number)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				var inv ErrInvalidNumber
				if !errors.As(err, &inv) {
					t.Errorf("Expected ErrInvalidNumber, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
		throttled bool
	}{
		{
			name:      "throttled by status code",
			err:       errors.New("unexpected status 429"),
			throttled: true,
		},
		{
			name:      "throttled by message",
			err:       errors.New("too many requests"),
			throttled: true,
		},
		{
			name:      "blacklisted recipient",
			err:       errors.New("mobile is in blacklist"),
			permanent: true,
		},
		{
			name:      "invalid number from gateway",
			err:       errors.New("invalid mobile number"),
			permanent: true,
		},
		{
			name: "generic failure stays retryable",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if IsPermanent(got) != tt.permanent {
				t.Errorf("IsPermanent = %v, want %v", IsPermanent(got), tt.permanent)
			}
			var thr ErrThrottled
			if errors.As(got, &thr) != tt.throttled {
				t.Errorf("throttled = %v, want %v", !tt.throttled, tt.throttled)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	if IsPermanent(ErrThrottled{Err: errors.New("x")}) {
		t.Error("throttled must not be permanent")
	}
	if !IsPermanent(ErrInvalidNumber{Number: "x", Reason: "bad"}) {
		t.Error("invalid number must be permanent")
	}
	if !IsPermanent(ErrOptedOut{Number: "x"}) {
		t.Error("opted out must be permanent")
	}
}
