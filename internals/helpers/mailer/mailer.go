// Package mailer sends outbound e-mail through SMTP, SendGrid or the log.
package mailer

import (
	"context"
	"log"
	"net/mail"
	"strings"
	"time"

	"colegio_backend/internals/configs"
	"colegio_backend/internals/middlewares/metrics"
)

// Message is one rendered e-mail. FromName carries the tenant branding.
type Message struct {
	To       []mail.Address
	Subject  string
	HTML     string
	Text     string
	FromName string
}

func (m Message) HasRecipients() bool { return len(m.To) > 0 }

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// New picks the driver from MAIL_DRIVER; unknown or unconfigured drivers fall back to console.
func New(cfg configs.Config) Sender {
	switch cfg.MailDriver {
	case "smtp":
		if cfg.SMTP.Host != "" {
			return NewSMTPSender(cfg.SMTP)
		}
		log.Printf("[WARN] MAIL_DRIVER=smtp sin SMTP_HOST, usando console")
	case "sendgrid":
		if cfg.SendgridAPIKey != "" {
			return NewSendgridSender(cfg.SendgridAPIKey, cfg.SMTP.From)
		}
		log.Printf("[WARN] MAIL_DRIVER=sendgrid sin SENDGRID_API_KEY, usando console")
	}
	return NewConsoleSender(cfg.SMTP.From)
}

const sendTimeout = 30 * time.Second

// Dispatch fires one goroutine per message. Failures are logged and counted, never returned.
func Dispatch(s Sender, msgs ...Message) {
	if s == nil {
		return
	}
	for _, m := range msgs {
		if !m.HasRecipients() {
			continue
		}
		m := m
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := s.Send(ctx, m); err != nil {
				metrics.MailFailures.WithLabelValues(s.Name()).Inc()
				log.Printf("[MAIL] envío fallido (%s) a %s: %v", s.Name(), joinAddresses(m.To), err)
			}
		}()
	}
}

func joinAddresses(list []mail.Address) string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.String())
	}
	return strings.Join(out, ", ")
}

// Addresses builds a recipient list, skipping blank e-mails.
func Addresses(pairs ...[2]string) []mail.Address {
	out := make([]mail.Address, 0, len(pairs))
	for _, p := range pairs {
		if e := strings.TrimSpace(p[1]); e != "" {
			out = append(out, mail.Address{Name: p[0], Address: e})
		}
	}
	return out
}
