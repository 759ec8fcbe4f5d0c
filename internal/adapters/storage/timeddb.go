package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold used when NewTimedDB is given zero.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and record them to a collector.
// Statements run inside a transaction are not timed.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: queries at or above threshold are logged at WARN as slow_query
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying *sql.DB for migrations and report queries.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

func (t *TimedDB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	label := QueryLabel(query)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	switch {
	case elapsed >= t.threshold:
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs)
	case err != nil && err != sql.ErrNoRows:
		slog.Debug("query_error", "query", label, "error", err)
	default:
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// QueryLabel reduces a statement to its verb and first table, e.g.
// "SELECT member" or "INSERT payment", for grouping timings without
// leaking literal values.
func QueryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "?"
	}
	verb := strings.ToUpper(fields[0])
	marker := ""
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + fields[1]
		}
	}
	if marker == "" {
		return verb
	}
	for i, f := range fields[:len(fields)-1] {
		if strings.EqualFold(f, marker) {
			table, _, _ := strings.Cut(fields[i+1], "(")
			if table == "" {
				return verb
			}
			return verb + " " + table
		}
	}
	return verb
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// The row is not scanned here, so the recorded time excludes Scan.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, row.Err())
	return row
}

// BeginTx starts a transaction on the underlying pool.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return t.db.BeginTx(ctx, opts)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}
