package mailer

import (
	"context"
	"errors"
	"net/mail"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colegio_backend/internals/configs"
)

type failingSender struct{ calls atomic.Int32 }

func (f *failingSender) Name() string { return "failing" }
func (f *failingSender) Send(context.Context, Message) error {
	f.calls.Add(1)
	return errors.New("smtp down")
}

func TestDispatchSkipsEmptyRecipients(t *testing.T) {
	s := NewConsoleSender("no-reply@colegio.cl")
	Dispatch(s,
		Message{Subject: "sin destinatario"},
		Message{To: []mail.Address{{Name: "Ana", Address: "ana@colegio.cl"}}, Subject: "hola"},
	)
	assert.Eventually(t, func() bool { return len(s.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "hola", s.Sent()[0].Subject)
}

func TestDispatchSwallowsFailures(t *testing.T) {
	f := &failingSender{}
	assert.NotPanics(t, func() {
		Dispatch(f, Message{To: Addresses([2]string{"Ana", "ana@colegio.cl"}), Subject: "x"})
	})
	assert.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestNewFallsBackToConsole(t *testing.T) {
	assert.Equal(t, "console", New(configs.Config{MailDriver: "smtp"}).Name())
	assert.Equal(t, "console", New(configs.Config{MailDriver: "sendgrid"}).Name())
	assert.Equal(t, "smtp", New(configs.Config{MailDriver: "smtp", SMTP: configs.SMTPConfig{Host: "mail", Port: 25}}).Name())
}

func TestRenderEscapes(t *testing.T) {
	html, err := Render(Branding{SchoolName: "Colegio San José"}, "Aviso", []string{"<b>deuda</b>"}, "")
	require.NoError(t, err)
	assert.Contains(t, html, "Colegio San José")
	assert.Contains(t, html, "&lt;b&gt;deuda&lt;/b&gt;")
	assert.NotContains(t, html, "Ver en la plataforma")
}

func TestAddressesSkipsBlank(t *testing.T) {
	out := Addresses([2]string{"A", " "}, [2]string{"B", "b@x.cl"})
	require.Len(t, out, 1)
	assert.Equal(t, "b@x.cl", out[0].Address)
}
