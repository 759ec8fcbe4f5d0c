package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymhub/internal/adapters/storage"
	classstore "gymhub/internal/adapters/storage/gymclass"
	domain "gymhub/internal/domain/booking"
	classdomain "gymhub/internal/domain/gymclass"
)

const selectColumns = "id, class_id, member_id, status, booked_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BookingStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM booking WHERE id = ?", id)
	var b domain.Booking
	var bookedAt string
	err := row.Scan(&b.ID, &b.ClassID, &b.MemberID, &b.Status, &bookedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	b.BookedAt, _ = storage.ParseTime(bookedAt)
	return b, nil
}

// Save persists a Booking to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, b domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking (`+selectColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status`,
		b.ID, b.ClassID, b.MemberID, b.Status, storage.FormatTime(b.BookedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyBooked
	}
	return err
}

// BookWithCapacity inserts b after re-checking the class inside one transaction.
// PRE: b has been validated and is in booked status
// POST: Booking inserted, or one of gymclass.ErrNotFound, gymclass.ErrAlreadyCancelled,
// booking.ErrClassStarted, booking.ErrAlreadyBooked, booking.ErrClassFull
func (s *SQLiteStore) BookWithCapacity(ctx context.Context, b domain.Booking, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	class, err := classstore.GetTx(ctx, tx, b.ClassID)
	if err != nil {
		return err
	}
	if class.Status != classdomain.StatusScheduled {
		return classdomain.ErrAlreadyCancelled
	}
	if !class.StartsAt.After(now) {
		return domain.ErrClassStarted
	}

	var existing int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM booking WHERE class_id = ? AND member_id = ? AND status = ?",
		b.ClassID, b.MemberID, domain.StatusBooked).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return domain.ErrAlreadyBooked
	}

	var booked int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM booking WHERE class_id = ? AND status = ?",
		b.ClassID, domain.StatusBooked).Scan(&booked); err != nil {
		return err
	}
	if booked >= class.Capacity {
		return domain.ErrClassFull
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO booking ("+selectColumns+") VALUES (?, ?, ?, ?, ?)",
		b.ID, b.ClassID, b.MemberID, b.Status, storage.FormatTime(b.BookedAt)); err != nil {
		if storage.IsUniqueViolation(err) {
			return domain.ErrAlreadyBooked
		}
		return err
	}
	return tx.Commit()
}

// ListForMember returns the member's active bookings for classes starting at or after from.
func (s *SQLiteStore) ListForMember(ctx context.Context, memberID string, from time.Time) ([]MemberBooking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.class_id, b.member_id, b.status, b.booked_at,
		        c.name, c.starts_at, c.duration_minutes, c.room, t.name
		 FROM booking b
		 JOIN gym_class c ON c.id = b.class_id
		 JOIN trainer t ON t.id = c.trainer_id
		 WHERE b.member_id = ? AND b.status = ? AND c.starts_at >= ?
		 ORDER BY c.starts_at`,
		memberID, domain.StatusBooked, storage.FormatTime(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemberBooking
	for rows.Next() {
		var mb MemberBooking
		var bookedAt, startsAt string
		if err := rows.Scan(&mb.ID, &mb.ClassID, &mb.MemberID, &mb.Status, &bookedAt,
			&mb.ClassName, &startsAt, &mb.DurationMinutes, &mb.Room, &mb.TrainerName); err != nil {
			return nil, err
		}
		mb.BookedAt, _ = storage.ParseTime(bookedAt)
		mb.StartsAt, _ = storage.ParseTime(startsAt)
		results = append(results, mb)
	}
	return results, rows.Err()
}

// ListRoster returns the members currently booked into a class, in booking order.
func (s *SQLiteStore) ListRoster(ctx context.Context, classID string) ([]RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, m.id, m.name, m.email, b.booked_at
		 FROM booking b JOIN member m ON m.id = b.member_id
		 WHERE b.class_id = ? AND b.status = ?
		 ORDER BY b.booked_at, b.id`,
		classID, domain.StatusBooked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RosterEntry
	for rows.Next() {
		var r RosterEntry
		var bookedAt string
		if err := rows.Scan(&r.BookingID, &r.MemberID, &r.MemberName, &r.MemberEmail, &bookedAt); err != nil {
			return nil, err
		}
		r.BookedAt, _ = storage.ParseTime(bookedAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
