// Package notify delivers scrape results and debug artifacts over SMTP.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/casawatch/casawatch/config"
)

// Mailer sends multipart mail (plain text + HTML alternative) with optional
// file attachments. A Mailer built from an unconfigured MailConfig refuses to
// send rather than failing mid-dial.
type Mailer struct {
	cfg config.MailConfig
}

// NewMailer creates a mailer from SMTP configuration.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Configured reports whether the mailer can deliver.
func (m *Mailer) Configured() bool { return m.cfg.Configured() }

// Send delivers one message. body is the plain-text part; html, when
// non-empty, is attached as the HTML alternative. Attachment paths that no
// longer exist cause the message build to fail, so callers should pass only
// paths they just wrote.
func (m *Mailer) Send(ctx context.Context, to, subject, body, html string, attachments []string) error {
	if !m.cfg.Configured() {
		return fmt.Errorf("mail is not configured")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.User); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.cfg.User, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if html != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}
	for _, path := range attachments {
		msg.AttachFile(path)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Pass),
	)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	slog.Info("mail sent", "to", to, "subject", subject, "attachments", len(attachments))
	return nil
}
