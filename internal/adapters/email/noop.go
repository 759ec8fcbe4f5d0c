package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs emails instead of delivering them. It keeps the most
// recent requests so development pages and tests can inspect them.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
	seq  int
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

const noopKeep = 100

// Send logs the email but does not deliver it.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.seq++
	id := fmt.Sprintf("noop-%d", s.seq)
	s.sent = append(s.sent, req)
	if len(s.sent) > noopKeep {
		s.sent = s.sent[len(s.sent)-noopKeep:]
	}
	s.mu.Unlock()

	slog.Info("noop_email_send", "message_id", id, "kind", req.Tag, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// Sent returns a copy of the retained requests, oldest first.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
