package config

import (
	"fmt"
	"time"
)

// NotifyConfig holds notifier configuration. Destinations are opaque to the
// alert engine; only the enable flags and a delivery timeout matter to it.
type NotifyConfig struct {
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration `mapstructure:"timeout"`

	Webhook WebhookConfig `mapstructure:"webhook"`
	Email   EmailConfig   `mapstructure:"email"`
}

// WebhookConfig holds webhook delivery parameters.
type WebhookConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// EmailConfig holds SMTP delivery parameters.
type EmailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
}

// Validate validates notifier configuration.
func (c *NotifyConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("notify.timeout must be positive, got %v", c.Timeout)
	}

	if c.Webhook.Enabled {
		if c.Webhook.URL == "" {
			return fmt.Errorf("notify.webhook.url is required when the webhook notifier is enabled")
		}
		if c.Webhook.MaxRetries < 0 {
			return fmt.Errorf("notify.webhook.max_retries must be >= 0, got %d", c.Webhook.MaxRetries)
		}
	}

	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("notify.email.host is required when the email notifier is enabled")
		}
		if c.Email.Port < 1 || c.Email.Port > 65535 {
			return fmt.Errorf("notify.email.port must be between 1 and 65535, got %d", c.Email.Port)
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("notify.email.recipients is required when the email notifier is enabled")
		}
	}

	return nil
}
