package mailer

import (
	"context"
	"log"
	"sync"
)

// ConsoleSender logs messages instead of sending them (development, tests).
type ConsoleSender struct {
	from string

	mu   sync.Mutex
	sent []Message
}

func NewConsoleSender(from string) *ConsoleSender { return &ConsoleSender{from: from} }

func (s *ConsoleSender) Name() string { return "console" }

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	log.Printf("[MAIL] from=%q <%s> to=%s subject=%q", msg.FromName, s.from, joinAddresses(msg.To), msg.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of everything sent so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
