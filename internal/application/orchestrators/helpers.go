package orchestrators

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"gymhub/internal/domain/outbox"
)

// ErrForbidden is returned when the actor's role does not allow the operation.
var ErrForbidden = errors.New("you are not allowed to do that")

// OutboxWriter queues outbound emails.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

func newID(gen func() string) string {
	if gen == nil {
		return uuid.New().String()
	}
	return gen()
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// enqueueEmail queues p for delivery. Failures are logged and returned; the
// caller's own write has already committed by the time this runs.
func enqueueEmail(ctx context.Context, w OutboxWriter, id string, p outbox.EmailPayload, now time.Time) error {
	if w == nil {
		return nil
	}
	entry, err := outbox.NewEmail(id, p, now)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "kind", p.Kind, "error", err)
		return err
	}
	if err := w.Save(ctx, entry); err != nil {
		slog.Error("outbox_enqueue_failed", "kind", p.Kind, "entry_id", id, "error", err)
		return err
	}
	slog.Debug("outbox_enqueued", "kind", p.Kind, "entry_id", id)
	return nil
}

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random temporary password of n characters
// drawn from an alphabet without look-alike characters.
func GeneratePassword(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// TempPasswordLength is the length of generated temporary passwords.
const TempPasswordLength = 16

// Actor identifies the logged-in account performing an operation.
type Actor struct {
	AccountID string
	Role      string
}
