package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// ActionTypeEmail is the only outbound integration.
const ActionTypeEmail = "email"

// Retry policy
const (
	DefaultMaxAttempts = 5
	BaseRetryDelay     = 30 * time.Second
	MaxRetryDelay      = time.Hour
)

// Email kinds, used for logging and the admin outbox view.
const (
	KindWelcomeTrainer = "welcome_trainer"
	KindWelcomeMember  = "welcome_member"
	KindPaymentReceipt = "payment_receipt"
	KindClassCancelled = "class_cancelled"
	KindStoryReviewed  = "story_reviewed"
	KindTest           = "test"
)

// Domain errors.
var (
	ErrNotFound        = errors.New("outbox entry not found")
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrEmptyCreatedAt  = errors.New("created_at must be set")
	ErrEmptyRecipient  = errors.New("email recipient is required")
	ErrEmptySubject    = errors.New("email subject is required")
	ErrNotAbandonable  = errors.New("only pending or failed entries can be abandoned")
	ErrNotRequeueable  = errors.New("only failed or abandoned entries can be requeued")
)

// Entry is a queued outbound action with its retry state.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	NextAttemptAt   time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message ID
	ErrorMessage    string
}

// EmailPayload is the JSON body of an email entry.
type EmailPayload struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Validate checks an email payload before it is queued.
func (p EmailPayload) Validate() error {
	if !strings.Contains(p.To, "@") {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(p.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}

// NewEmail builds a pending email entry ready to save.
// PRE: id is non-empty, payload is valid
// POST: Returns an entry due immediately
func NewEmail(id string, p EmailPayload, now time.Time) (Entry, error) {
	if err := p.Validate(); err != nil {
		return Entry{}, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:            id,
		ActionType:    ActionTypeEmail,
		Payload:       string(body),
		Status:        StatusPending,
		MaxAttempts:   DefaultMaxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

// Email decodes the entry payload.
func (e *Entry) Email() (EmailPayload, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
		return EmailPayload{}, err
	}
	return p, nil
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrEmptyCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// IsDue reports whether the entry should be attempted at now.
func (e *Entry) IsDue(now time.Time) bool {
	return e.CanRetry() && !now.Before(e.NextAttemptAt)
}

// CanRetry returns true if the entry can be retried.
// PRE: Status and Attempts fields are set
// POST: Returns true for pending/retrying with attempts < max
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying) && e.Attempts < e.MaxAttempts
}

// IsTerminal returns true if the entry will not be attempted again.
func (e *Entry) IsTerminal() bool {
	return e.Status == StatusDone || e.Status == StatusFailed || e.Status == StatusAbandoned
}

// MarkAttempt records an attempt starting at now.
// POST: Attempts incremented, status set to retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry as delivered.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records err and schedules the next attempt, or fails the
// entry permanently once MaxAttempts is reached.
// PRE: MarkAttempt was called for this attempt
// POST: Status is retrying with NextAttemptAt in the future, or failed
func (e *Entry) MarkFailed(err error, now time.Time) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
		return
	}
	e.NextAttemptAt = now.Add(e.NextRetryDelay(BaseRetryDelay, MaxRetryDelay))
}

// MarkAbandoned stops an entry from being retried.
func (e *Entry) MarkAbandoned() error {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return ErrNotAbandonable
	}
	e.Status = StatusAbandoned
	return nil
}

// Requeue resets a failed or abandoned entry for another round of attempts.
func (e *Entry) Requeue(now time.Time) error {
	if e.Status != StatusFailed && e.Status != StatusAbandoned {
		return ErrNotRequeueable
	}
	e.Status = StatusPending
	e.Attempts = 0
	e.NextAttemptAt = now
	e.ErrorMessage = ""
	return nil
}

// NextRetryDelay calculates the delay before the next retry attempt.
// Uses exponential backoff: 2^(attempts-1) * baseDelay, capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	n := e.Attempts - 1
	if n < 0 {
		n = 0
	}
	if n > 20 {
		return maxDelay
	}
	delay := baseDelay * (1 << n)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
