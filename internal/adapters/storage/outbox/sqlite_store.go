package outbox

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/outbox"
)

const selectColumns = "id, action_type, payload, status, attempts, max_attempts, last_attempted_at, next_attempt_at, created_at, external_id, error_message"

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
// PRE: id is non-empty
// POST: Returns the entry or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM outbox WHERE id = ?", id)
	return scanEntry(row.Scan)
}

// Save persists an outbox entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   action_type=excluded.action_type, payload=excluded.payload, status=excluded.status,
		   attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, next_attempt_at=excluded.next_attempt_at,
		   external_id=excluded.external_id, error_message=excluded.error_message`,
		e.ID, e.ActionType, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.LastAttemptedAt), storage.FormatTime(e.NextAttemptAt),
		storage.FormatTime(e.CreatedAt), e.ExternalID, e.ErrorMessage)
	return err
}

// ListDue returns entries that are ready for another attempt.
// PRE: limit > 0
// POST: Returns up to limit entries ordered by next_attempt_at
func (s *SQLiteStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+` FROM outbox
		 WHERE status IN (?, ?) AND attempts < max_attempts AND next_attempt_at <= ?
		 ORDER BY next_attempt_at, created_at LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, storage.FormatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByStatus returns entries in status, newest first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+selectColumns+" FROM outbox WHERE status = ? ORDER BY created_at DESC LIMIT ?",
			status, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+selectColumns+" FROM outbox ORDER BY created_at DESC LIMIT ?", limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CountByStatus returns entry counts keyed by status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM outbox GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Delete removes a terminal outbox entry.
// PRE: id is non-empty and entry is done or abandoned
// POST: Entry is removed from database
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM outbox WHERE id = ? AND status IN (?, ?)",
		id, domain.StatusDone, domain.StatusAbandoned)
	return err
}

// scanEntry extracts an Entry from a row scanner function.
func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var e domain.Entry
	var lastAttemptedAt, nextAttemptAt, createdAt string
	err := scan(&e.ID, &e.ActionType, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&lastAttemptedAt, &nextAttemptAt, &createdAt, &e.ExternalID, &e.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Entry{}, err
	}
	e.LastAttemptedAt, _ = storage.ParseTime(lastAttemptedAt)
	e.NextAttemptAt, _ = storage.ParseTime(nextAttemptAt)
	e.CreatedAt, _ = storage.ParseTime(createdAt)
	return e, nil
}

// scanEntries scans multiple rows into a slice of Entries.
func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
