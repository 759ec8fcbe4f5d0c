package member

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gymhub/internal/adapters/storage"
	accountstore "gymhub/internal/adapters/storage/account"
	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/member"
)

const selectColumns = "id, account_id, name, email, phone, plan, status, expires_on, joined_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	return GetTx(ctx, s.db, id)
}

// GetTx retrieves a Member by ID using ex. Used inside payment transactions.
func GetTx(ctx context.Context, ex storage.Execer, id string) (domain.Member, error) {
	row := ex.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM member WHERE id = ?", id)
	return scanMember(row.Scan)
}

// GetByAccountID retrieves the Member owning a login account.
// PRE: accountID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM member WHERE account_id = ?", accountID)
	return scanMember(row.Scan)
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	return SaveTx(ctx, s.db, entity)
}

// SaveTx upserts a Member using ex, so callers can include it in a wider transaction.
// PRE: entity has been validated
// POST: Row written; ErrDuplicateEmail if another member has the email
func SaveTx(ctx context.Context, ex storage.Execer, entity domain.Member) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO member (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   account_id=excluded.account_id, name=excluded.name, email=excluded.email,
		   phone=excluded.phone, plan=excluded.plan, status=excluded.status,
		   expires_on=excluded.expires_on`,
		entity.ID,
		storage.NullIfEmpty(entity.AccountID),
		entity.Name,
		strings.ToLower(entity.Email),
		entity.Phone,
		entity.Plan,
		entity.Status,
		storage.FormatDate(entity.ExpiresOn),
		storage.FormatTime(entity.JoinedAt),
	)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// CreateWithAccount inserts the member's login account and member row in one transaction.
// PRE: both entities validated; m.AccountID == a.ID
// POST: Both rows written, or neither; ErrDuplicateEmail if either email is taken
func (s *SQLiteStore) CreateWithAccount(ctx context.Context, m domain.Member, a accountdomain.Account) error {
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
	if err := SaveTx(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// Update loads the member, applies change and writes it back in one
// transaction, so a payment committed meanwhile is never overwritten.
// PRE: id is non-empty
// POST: Returns the stored member; an error from change aborts without writing
func (s *SQLiteStore) Update(ctx context.Context, id string, change func(*domain.Member) error) (domain.Member, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Member{}, err
	}
	defer tx.Rollback()

	m, err := GetTx(ctx, tx, id)
	if err != nil {
		return domain.Member{}, err
	}
	if err := change(&m); err != nil {
		return domain.Member{}, err
	}
	if err := m.Validate(); err != nil {
		return domain.Member{}, err
	}
	if err := SaveTx(ctx, tx, m); err != nil {
		return domain.Member{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}

// ExpireIfLapsed flips one member to expired only while the row is still an
// active membership that ended before today.
// PRE: id is non-empty
// POST: Returns false when the member was renewed, suspended or already expired
func (s *SQLiteStore) ExpireIfLapsed(ctx context.Context, id string, today time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET status = ? WHERE id = ? AND status = ? AND expires_on != '' AND expires_on < ?",
		domain.StatusExpired, id, domain.StatusActive, storage.FormatDate(today))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// List retrieves Members based on the filter.
// PRE: filter.Sort is empty or one of SortColumns
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := buildWhere(filter)

	order := "name"
	if isSortColumn(filter.Sort) {
		order = filter.Sort
	}
	dir := "ASC"
	if strings.EqualFold(filter.Dir, "desc") {
		dir = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + selectColumns + " FROM member" + where +
		" ORDER BY " + order + " " + dir + ", id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

// Count returns the number of members matching the filter, ignoring paging.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&n)
	return n, err
}

// CountByStatus returns member counts keyed by status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM member GROUP BY status")
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

// ListLapsed returns active members whose membership ended before today.
func (s *SQLiteStore) ListLapsed(ctx context.Context, today time.Time) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM member WHERE status = ? AND expires_on != '' AND expires_on < ? ORDER BY expires_on",
		domain.StatusActive, storage.FormatDate(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Search != "" {
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
		like := "%" + likeEscaper.Replace(filter.Search) + "%"
		args = append(args, like, like)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Plan != "" {
		clauses = append(clauses, "plan = ?")
		args = append(args, filter.Plan)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func isSortColumn(col string) bool {
	for _, c := range SortColumns {
		if c == col {
			return true
		}
	}
	return false
}

func scanMembers(rows *sql.Rows) ([]domain.Member, error) {
	var results []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var m domain.Member
	var accountID sql.NullString
	var expiresOn, joinedAt string
	err := scan(&m.ID, &accountID, &m.Name, &m.Email, &m.Phone, &m.Plan, &m.Status, &expiresOn, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Member{}, err
	}
	m.AccountID = accountID.String
	m.ExpiresOn, _ = storage.ParseDate(expiresOn)
	m.JoinedAt, _ = storage.ParseTime(joinedAt)
	return m, nil
}
