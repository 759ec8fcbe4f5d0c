package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/account"
)

const selectColumns = "id, email, name, password_hash, role, created_at, failed_logins, locked_until, password_change_required"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM account WHERE id = ?", id)
	return scanAccount(row.Scan)
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM account WHERE email = ? COLLATE NOCASE", email)
	return scanAccount(row.Scan)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := SaveTx(ctx, tx, entity); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveTx upserts an Account using ex, so callers can include it in a wider transaction.
// PRE: entity has been validated
// POST: Row written; ErrDuplicateEmail if the email belongs to another account
func SaveTx(ctx context.Context, ex storage.Execer, entity domain.Account) error {
	updates := []string{
		"email=excluded.email",
		"name=excluded.name",
		"password_hash=excluded.password_hash",
		"role=excluded.role",
		"failed_logins=excluded.failed_logins",
		"locked_until=excluded.locked_until",
		"password_change_required=excluded.password_change_required",
	}
	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET %s",
		selectColumns, strings.Join(updates, ", "),
	)

	_, err := ex.ExecContext(ctx, query,
		entity.ID,
		strings.ToLower(entity.Email),
		entity.Name,
		entity.PasswordHash,
		entity.Role,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.FormatTime(entity.LockedUntil),
		entity.PasswordChangeRequired,
	)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities, newest first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT " + selectColumns + " FROM account")

	if filter.Role != "" {
		queryBuilder.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt, lockedUntil string
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
		&entity.PasswordChangeRequired,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.LockedUntil, _ = storage.ParseTime(lockedUntil)
	return entity, nil
}
