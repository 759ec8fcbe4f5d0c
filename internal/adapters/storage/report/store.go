// Package report runs read-only aggregate queries for the admin reports.
package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"gymhub/internal/adapters/storage"
)

// MonthTotal is the revenue collected in one calendar month.
type MonthTotal struct {
	Month      string `db:"month"` // YYYY-MM
	Payments   int    `db:"payments"`
	TotalCents int    `db:"total_cents"`
}

// MethodTotal is the revenue collected through one payment method.
type MethodTotal struct {
	Method     string `db:"method"`
	Payments   int    `db:"payments"`
	TotalCents int    `db:"total_cents"`
}

// PlanTotal is the revenue attributed to one membership plan.
type PlanTotal struct {
	Plan       string `db:"plan"`
	Payments   int    `db:"payments"`
	TotalCents int    `db:"total_cents"`
}

// TrainerLoad summarises a trainer's upcoming schedule.
type TrainerLoad struct {
	TrainerID string `db:"trainer_id"`
	Name      string `db:"name"`
	Classes   int    `db:"classes"`
	Booked    int    `db:"booked"`
	Capacity  int    `db:"capacity"`
}

// Store reads report aggregates.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps db for struct scanning. driverName is the name db was opened with.
func NewStore(db *sql.DB, driverName string) *Store {
	return &Store{db: sqlx.NewDb(db, driverName)}
}

// RevenueByMonth returns totals per month for payments in [from, to).
// Months with no payments are omitted.
func (s *Store) RevenueByMonth(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	var rows []MonthTotal
	err := s.db.SelectContext(ctx, &rows,
		`SELECT substr(paid_at, 1, 7) AS month, COUNT(*) AS payments, SUM(amount_cents) AS total_cents
		 FROM payment WHERE paid_at >= ? AND paid_at < ?
		 GROUP BY month ORDER BY month`,
		storage.FormatTime(from), storage.FormatTime(to))
	return rows, err
}

// RevenueByMethod returns totals per payment method for payments in [from, to).
func (s *Store) RevenueByMethod(ctx context.Context, from, to time.Time) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := s.db.SelectContext(ctx, &rows,
		`SELECT method, COUNT(*) AS payments, SUM(amount_cents) AS total_cents
		 FROM payment WHERE paid_at >= ? AND paid_at < ?
		 GROUP BY method ORDER BY total_cents DESC, method`,
		storage.FormatTime(from), storage.FormatTime(to))
	return rows, err
}

// RevenueByPlan returns totals per membership plan for payments in [from, to).
func (s *Store) RevenueByPlan(ctx context.Context, from, to time.Time) ([]PlanTotal, error) {
	var rows []PlanTotal
	err := s.db.SelectContext(ctx, &rows,
		`SELECT plan, COUNT(*) AS payments, SUM(amount_cents) AS total_cents
		 FROM payment WHERE paid_at >= ? AND paid_at < ?
		 GROUP BY plan ORDER BY total_cents DESC, plan`,
		storage.FormatTime(from), storage.FormatTime(to))
	return rows, err
}

// TrainerLoads returns scheduled class counts and bookings per active trainer
// for classes starting in [from, to).
func (s *Store) TrainerLoads(ctx context.Context, from, to time.Time) ([]TrainerLoad, error) {
	var rows []TrainerLoad
	err := s.db.SelectContext(ctx, &rows,
		`SELECT t.id AS trainer_id, t.name AS name,
		        COUNT(c.id) AS classes,
		        COALESCE(SUM(c.capacity), 0) AS capacity,
		        COALESCE(SUM(bc.n), 0) AS booked
		 FROM trainer t
		 LEFT JOIN gym_class c ON c.trainer_id = t.id AND c.status = 'scheduled'
		      AND c.starts_at >= ? AND c.starts_at < ?
		 LEFT JOIN (SELECT class_id, COUNT(*) AS n FROM booking WHERE status = 'booked' GROUP BY class_id) bc
		      ON bc.class_id = c.id
		 WHERE t.status = 'active'
		 GROUP BY t.id, t.name ORDER BY classes DESC, t.name`,
		storage.FormatTime(from), storage.FormatTime(to))
	return rows, err
}
