package story

import (
	"context"
	"database/sql"
	"errors"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/story"
)

const selectColumns = "id, member_id, title, body, months_training, status, submitted_at, reviewed_by, reviewed_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new StoryStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Story by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Story, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM success_story WHERE id = ?", id)
	return scanStory(row.Scan)
}

// Save persists a Story to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Story) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO success_story (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, body=excluded.body, months_training=excluded.months_training,
		   status=excluded.status, reviewed_by=excluded.reviewed_by, reviewed_at=excluded.reviewed_at`,
		entity.ID, entity.MemberID, entity.Title, entity.Body, entity.MonthsTraining, entity.Status,
		storage.FormatTime(entity.SubmittedAt), entity.ReviewedBy, storage.FormatTime(entity.ReviewedAt))
	return err
}

// List returns stories with author names. Published stories are ordered by
// review time, everything else by submission time, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]AuthoredStory, error) {
	query := `SELECT s.id, s.member_id, s.title, s.body, s.months_training, s.status,
	                 s.submitted_at, s.reviewed_by, s.reviewed_at, m.name
	          FROM success_story s JOIN member m ON m.id = s.member_id`
	var args []any
	if filter.Status != "" {
		query += " WHERE s.status = ?"
		args = append(args, filter.Status)
	}
	if filter.Status == domain.StatusPublished {
		query += " ORDER BY s.reviewed_at DESC, s.id"
	} else {
		query += " ORDER BY s.submitted_at DESC, s.id"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AuthoredStory
	for rows.Next() {
		var a AuthoredStory
		var submittedAt, reviewedAt string
		if err := rows.Scan(&a.ID, &a.MemberID, &a.Title, &a.Body, &a.MonthsTraining, &a.Status,
			&submittedAt, &a.ReviewedBy, &reviewedAt, &a.AuthorName); err != nil {
			return nil, err
		}
		a.SubmittedAt, _ = storage.ParseTime(submittedAt)
		a.ReviewedAt, _ = storage.ParseTime(reviewedAt)
		results = append(results, a)
	}
	return results, rows.Err()
}

// ListForMember returns a member's own stories in any status, newest first.
func (s *SQLiteStore) ListForMember(ctx context.Context, memberID string) ([]domain.Story, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM success_story WHERE member_id = ? ORDER BY submitted_at DESC, id", memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Story
	for rows.Next() {
		st, err := scanStory(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, st)
	}
	return results, rows.Err()
}

// CountPending returns the number of stories awaiting review.
func (s *SQLiteStore) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM success_story WHERE status = ?", domain.StatusPending).Scan(&n)
	return n, err
}

// scanStory extracts a Story from a row scanner function.
func scanStory(scan func(dest ...any) error) (domain.Story, error) {
	var st domain.Story
	var submittedAt, reviewedAt string
	err := scan(&st.ID, &st.MemberID, &st.Title, &st.Body, &st.MonthsTraining, &st.Status,
		&submittedAt, &st.ReviewedBy, &reviewedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Story{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Story{}, err
	}
	st.SubmittedAt, _ = storage.ParseTime(submittedAt)
	st.ReviewedAt, _ = storage.ParseTime(reviewedAt)
	return st, nil
}
