package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"dabmon/internal/alerts"
	"dabmon/internal/config"
)

// EmailNotifier sends alerts over SMTP.
type EmailNotifier struct {
	cfg config.EmailConfig

	// send is swapped out in tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates an email notifier from configuration.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Name implements Notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// Deliver implements Notifier. net/smtp has no context support, so the send
// runs in a goroutine and the delivery timeout is enforced by the caller's
// context.
func (e *EmailNotifier) Deliver(ctx context.Context, a alerts.Alert) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	from := e.cfg.From
	if from == "" {
		from = e.cfg.Username
	}

	msg := e.buildMessage(from, a)

	done := make(chan error, 1)
	go func() {
		done <- e.send(addr, auth, from, e.cfg.Recipients, msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp delivery failed: %w", err)
		}
		return nil
	}
}

func (e *EmailNotifier) buildMessage(from string, a alerts.Alert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.cfg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: [%s] DAB converter alert: %s\r\n", strings.ToUpper(a.Severity.String()), a.Metric)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s\r\n", a.Message)
	fmt.Fprintf(&b, "Raised at: %s\r\n", a.Timestamp.Format("2006-01-02 15:04:05"))
	for _, rec := range a.Recommendations {
		fmt.Fprintf(&b, "- %s\r\n", rec)
	}
	return []byte(b.String())
}
