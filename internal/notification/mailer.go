package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"robot-factory-backend/config"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer defines the interface for delivering an email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer is a real implementation of Mailer that relays through an SMTP server.
type SMTPMailer struct {
	client *mail.Client
}

// NewSMTPMailer builds an SMTP client from the mail configuration.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client for %s: %w", cfg.Host, err)
	}
	return &SMTPMailer{client: client}, nil
}

// Send delivers a single message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := out.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipients %v: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail to %v: %w", msg.To, err)
	}
	return nil
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "mandatory":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
