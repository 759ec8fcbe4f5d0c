package outbox

import (
	"context"
	"time"

	domain "gymhub/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or domain.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListDue returns pending or retrying entries whose next attempt is at or before now.
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by next_attempt_at
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListByStatus returns entries in status, most recently created first.
	// An empty status lists every entry.
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)

	// CountByStatus returns entry counts keyed by status.
	CountByStatus(ctx context.Context) (map[string]int, error)

	// Delete removes a terminal outbox entry.
	// PRE: id is non-empty and entry is done or abandoned
	// POST: Entry is removed from database
	Delete(ctx context.Context, id string) error
}
