package notify

import (
	"context"
	"fmt"

	"github.com/diewo77/go-printshop/internal/settings"
	"gopkg.in/gomail.v2"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a message. Implementations must return once ctx is done.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport sends through the SMTP server currently configured in the settings store.
type SMTPTransport struct {
	settings *settings.Store
}

func NewSMTPTransport(s *settings.Store) *SMTPTransport {
	return &SMTPTransport{settings: s}
}

// Send dials with the latest snapshot so saved settings apply without a restart.
// gomail negotiates STARTTLS whenever the server offers it; UseTLS on port 465
// switches to implicit TLS. An empty username skips authentication.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	cfg := t.settings.Mail()
	if cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseTLS && cfg.Port == 465

	// DialAndSend has no context support; abandon it when ctx expires.
	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp %s:%d: %w", cfg.Host, cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp %s:%d: %w", cfg.Host, cfg.Port, ctx.Err())
	}
}
