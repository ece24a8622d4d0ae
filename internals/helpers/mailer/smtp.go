package mailer

import (
	"context"
	"net/mail"

	gomail "gopkg.in/mail.v2"

	"colegio_backend/internals/configs"
)

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(c configs.SMTPConfig) *SMTPSender {
	d := gomail.NewDialer(c.Host, c.Port, c.User, c.Password)
	d.StartTLSPolicy = gomail.OpportunisticStartTLS
	return &SMTPSender{dialer: d, from: c.From}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	from := mail.Address{Name: msg.FromName, Address: s.from}
	m.SetHeader("From", from.String())
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.String())
	}
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}
