package gymclass

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gymhub/internal/adapters/storage"
	bookingdomain "gymhub/internal/domain/booking"
	domain "gymhub/internal/domain/gymclass"
)

const selectColumns = "id, name, description, trainer_id, starts_at, duration_minutes, capacity, room, status, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClassStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Class by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	return GetTx(ctx, s.db, id)
}

// GetTx retrieves a Class by ID using ex. Used inside booking transactions.
func GetTx(ctx context.Context, ex storage.Execer, id string) (domain.Class, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM gym_class WHERE id = ?", id)
	return scanClass(row.Scan)
}

// Save persists a Class to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Class) error {
	return saveTx(ctx, s.db, c)
}

func saveTx(ctx context.Context, ex storage.Execer, c domain.Class) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO gym_class (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, trainer_id=excluded.trainer_id,
		   starts_at=excluded.starts_at, duration_minutes=excluded.duration_minutes,
		   capacity=excluded.capacity, room=excluded.room, status=excluded.status`,
		c.ID, c.Name, c.Description, c.TrainerID, storage.FormatTime(c.StartsAt),
		c.DurationMinutes, c.Capacity, c.Room, c.Status, storage.FormatTime(c.CreatedAt),
	)
	return err
}

// CreateUnlessOverlapping inserts c after re-checking the trainer's schedule
// inside one transaction.
// PRE: c has been validated and is scheduled
// POST: Class inserted, or the first clashing class and domain.ErrTrainerOverlap
func (s *SQLiteStore) CreateUnlessOverlapping(ctx context.Context, c domain.Class) (domain.Class, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Class{}, err
	}
	defer tx.Rollback()

	// Any class starting up to MaxDurationMinutes earlier could still be running.
	from := c.StartsAt.Add(-domain.MaxDurationMinutes * time.Minute)
	existing, err := listForTrainer(ctx, tx, c.TrainerID, from, c.EndsAt())
	if err != nil {
		return domain.Class{}, err
	}
	for _, other := range existing {
		if other.ID != c.ID && c.Overlaps(other) {
			return other, domain.ErrTrainerOverlap
		}
	}
	if err := saveTx(ctx, tx, c); err != nil {
		return domain.Class{}, err
	}
	return domain.Class{}, tx.Commit()
}

// ListForTrainer returns the trainer's scheduled classes starting in [from, to).
func (s *SQLiteStore) ListForTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]domain.Class, error) {
	return listForTrainer(ctx, s.db, trainerID, from, to)
}

func listForTrainer(ctx context.Context, ex storage.Execer, trainerID string, from, to time.Time) ([]domain.Class, error) {
	rows, err := ex.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM gym_class WHERE trainer_id = ? AND status = ? AND starts_at >= ? AND starts_at < ? ORDER BY starts_at",
		trainerID, domain.StatusScheduled, storage.FormatTime(from), storage.FormatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Class
	for rows.Next() {
		c, err := scanClass(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// ListSchedule returns classes with trainer names and active booking counts, soonest first.
func (s *SQLiteStore) ListSchedule(ctx context.Context, filter ScheduleFilter) ([]ScheduledClass, error) {
	clauses := []string{"c.starts_at >= ?"}
	args := []any{bookingdomain.StatusBooked, storage.FormatTime(filter.From)}
	if !filter.To.IsZero() {
		clauses = append(clauses, "c.starts_at < ?")
		args = append(args, storage.FormatTime(filter.To))
	}
	if filter.TrainerID != "" {
		clauses = append(clauses, "c.trainer_id = ?")
		args = append(args, filter.TrainerID)
	}
	if !filter.IncludeCancelled {
		clauses = append(clauses, "c.status = ?")
		args = append(args, domain.StatusScheduled)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)

	query := `SELECT c.id, c.name, c.description, c.trainer_id, c.starts_at, c.duration_minutes,
	                 c.capacity, c.room, c.status, c.created_at, t.name,
	                 (SELECT COUNT(*) FROM booking b WHERE b.class_id = c.id AND b.status = ?)
	          FROM gym_class c JOIN trainer t ON t.id = c.trainer_id
	          WHERE ` + strings.Join(clauses, " AND ") + `
	          ORDER BY c.starts_at, c.id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScheduledClass
	for rows.Next() {
		var sc ScheduledClass
		var startsAt, createdAt string
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Description, &sc.TrainerID, &startsAt,
			&sc.DurationMinutes, &sc.Capacity, &sc.Room, &sc.Status, &createdAt,
			&sc.TrainerName, &sc.Booked); err != nil {
			return nil, err
		}
		sc.StartsAt, _ = storage.ParseTime(startsAt)
		sc.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, sc)
	}
	return results, rows.Err()
}

// CancelWithBookings cancels the class and every active booking on it atomically.
// PRE: class exists and is scheduled
// POST: class and its bookings are cancelled, or nothing changed
func (s *SQLiteStore) CancelWithBookings(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE gym_class SET status = ? WHERE id = ? AND status = ?",
		domain.StatusCancelled, id, domain.StatusScheduled)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := GetTx(ctx, tx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyCancelled
	}
	if _, err := tx.ExecContext(ctx, "UPDATE booking SET status = ? WHERE class_id = ? AND status = ?",
		bookingdomain.StatusCancelled, id, bookingdomain.StatusBooked); err != nil {
		return err
	}
	return tx.Commit()
}

// CountUpcoming returns the number of scheduled classes starting after now.
func (s *SQLiteStore) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gym_class WHERE status = ? AND starts_at > ?",
		domain.StatusScheduled, storage.FormatTime(now)).Scan(&n)
	return n, err
}

func scanClass(scan func(dest ...any) error) (domain.Class, error) {
	var c domain.Class
	var startsAt, createdAt string
	err := scan(&c.ID, &c.Name, &c.Description, &c.TrainerID, &startsAt,
		&c.DurationMinutes, &c.Capacity, &c.Room, &c.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Class{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Class{}, err
	}
	c.StartsAt, _ = storage.ParseTime(startsAt)
	c.CreatedAt, _ = storage.ParseTime(createdAt)
	return c, nil
}
