// Package email delivers outbound mail through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string
	From    string // defaults to the sender's configured address
	Subject string
	Text    string
	HTML    string // optional; providers fall back to Text
	ReplyTo string
	Tag     string // email kind, forwarded to providers that support tagging
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
