package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gymhub/internal/adapters/storage"
	memberstore "gymhub/internal/adapters/storage/member"
	memberdomain "gymhub/internal/domain/member"
	domain "gymhub/internal/domain/payment"
)

const selectColumns = "id, member_id, amount_cents, method, plan, period_months, paid_at, reference, recorded_by"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordWithMembership inserts the payment and applies update to the paying
// member in a single transaction. update receives the member as read inside
// the transaction and must leave it valid.
// PRE: p has been validated
// POST: payment row inserted and member saved, or neither
func (s *SQLiteStore) RecordWithMembership(ctx context.Context, p domain.Payment, update func(*memberdomain.Member) error) (memberdomain.Member, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return memberdomain.Member{}, err
	}
	defer tx.Rollback()

	m, err := memberstore.GetTx(ctx, tx, p.MemberID)
	if err != nil {
		return memberdomain.Member{}, err
	}
	if err := update(&m); err != nil {
		return memberdomain.Member{}, err
	}
	if err := m.Validate(); err != nil {
		return memberdomain.Member{}, fmt.Errorf("member after payment: %w", err)
	}
	if err := memberstore.SaveTx(ctx, tx, m); err != nil {
		return memberdomain.Member{}, fmt.Errorf("update member: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO payment ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.MemberID, p.AmountCents, p.Method, p.Plan, p.PeriodMonths,
		storage.FormatTime(p.PaidAt), p.Reference, p.RecordedBy); err != nil {
		return memberdomain.Member{}, fmt.Errorf("insert payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return memberdomain.Member{}, err
	}
	return m, nil
}

// ListForMember returns the member's payments, newest first.
func (s *SQLiteStore) ListForMember(ctx context.Context, memberID string, limit int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM payment WHERE member_id = ? ORDER BY paid_at DESC, id LIMIT ?",
		memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var paidAt string
		if err := rows.Scan(&p.ID, &p.MemberID, &p.AmountCents, &p.Method, &p.Plan,
			&p.PeriodMonths, &paidAt, &p.Reference, &p.RecordedBy); err != nil {
			return nil, err
		}
		p.PaidAt, _ = storage.ParseTime(paidAt)
		results = append(results, p)
	}
	return results, rows.Err()
}

// List returns payments matching the filter with member names, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]PaymentRow, error) {
	var clauses []string
	var args []any
	if !filter.From.IsZero() {
		clauses = append(clauses, "p.paid_at >= ?")
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "p.paid_at < ?")
		args = append(args, storage.FormatTime(filter.To))
	}
	if filter.MemberID != "" {
		clauses = append(clauses, "p.member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.Method != "" {
		clauses = append(clauses, "p.method = ?")
		args = append(args, filter.Method)
	}
	query := `SELECT p.id, p.member_id, p.amount_cents, p.method, p.plan, p.period_months,
	                 p.paid_at, p.reference, p.recorded_by, m.name
	          FROM payment p JOIN member m ON m.id = p.member_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY p.paid_at DESC, p.id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PaymentRow
	for rows.Next() {
		var r PaymentRow
		var paidAt string
		if err := rows.Scan(&r.ID, &r.MemberID, &r.AmountCents, &r.Method, &r.Plan,
			&r.PeriodMonths, &paidAt, &r.Reference, &r.RecordedBy, &r.MemberName); err != nil {
			return nil, err
		}
		r.PaidAt, _ = storage.ParseTime(paidAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// SumBetween returns total cents paid in [from, to).
func (s *SQLiteStore) SumBetween(ctx context.Context, from, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM payment WHERE paid_at >= ? AND paid_at < ?",
		storage.FormatTime(from), storage.FormatTime(to)).Scan(&total)
	return total, err
}
