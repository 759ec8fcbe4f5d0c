package trainer

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gymhub/internal/adapters/storage"
	accountstore "gymhub/internal/adapters/storage/account"
	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/trainer"
)

const selectColumns = "id, account_id, name, email, phone, specialty, certification, experience_years, hourly_rate_cents, bio, status, hired_on"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TrainerStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Trainer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM trainer WHERE id = ?", id)
	return scanTrainer(row.Scan)
}

// GetByAccountID retrieves the Trainer owning a login account.
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Trainer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM trainer WHERE account_id = ?", accountID)
	return scanTrainer(row.Scan)
}

// Save persists a Trainer to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Trainer) error {
	return saveTx(ctx, s.db, entity)
}

// CreateWithAccount inserts the trainer's login account and profile atomically.
// PRE: both entities have been validated, t.AccountID == a.ID
// POST: Both rows exist, or neither does
func (s *SQLiteStore) CreateWithAccount(ctx context.Context, t domain.Trainer, a accountdomain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := accountstore.SaveTx(ctx, tx, a); err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			return ErrDuplicateEmail
		}
		return err
	}
	if err := saveTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func saveTx(ctx context.Context, ex storage.Execer, t domain.Trainer) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO trainer (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone,
		   specialty=excluded.specialty, certification=excluded.certification,
		   experience_years=excluded.experience_years, hourly_rate_cents=excluded.hourly_rate_cents,
		   bio=excluded.bio, status=excluded.status`,
		t.ID,
		storage.NullIfEmpty(t.AccountID),
		t.Name,
		strings.ToLower(t.Email),
		t.Phone,
		t.Specialty,
		t.Certification,
		t.ExperienceYears,
		t.HourlyRateCents,
		t.Bio,
		t.Status,
		storage.FormatDate(t.HiredOn),
	)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// List retrieves Trainers ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Trainer, error) {
	var clauses []string
	var args []any
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Specialty != "" {
		clauses = append(clauses, "specialty = ?")
		args = append(args, filter.Specialty)
	}
	query := "SELECT " + selectColumns + " FROM trainer"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Trainer
	for rows.Next() {
		t, err := scanTrainer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// CountActive returns the number of active trainers.
func (s *SQLiteStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trainer WHERE status = ?", domain.StatusActive).Scan(&n)
	return n, err
}

func scanTrainer(scan func(dest ...any) error) (domain.Trainer, error) {
	var t domain.Trainer
	var accountID sql.NullString
	var hiredOn string
	err := scan(&t.ID, &accountID, &t.Name, &t.Email, &t.Phone, &t.Specialty, &t.Certification,
		&t.ExperienceYears, &t.HourlyRateCents, &t.Bio, &t.Status, &hiredOn)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trainer{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Trainer{}, err
	}
	t.AccountID = accountID.String
	t.HiredOn, _ = storage.ParseDate(hiredOn)
	return t, nil
}
