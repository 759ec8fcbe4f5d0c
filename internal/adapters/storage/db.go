package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// TimeLayout is the layout used for every timestamp column. Values are
// written in UTC at second precision so they sort lexically.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// DateLayout is the layout used for date-only columns.
const DateLayout = "2006-01-02"

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one numbered SQL file from the migrations directory.
type migration struct {
	version int
	name    string
	sql     string
}

// OpenDB opens the SQLite database at path, creating its directory if needed.
// Pragmas are set through the DSN so every pooled connection gets them.
// Transactions take the write lock at BEGIN, so a read-check-write
// transaction waits for a concurrent writer instead of acting on stale rows.
// PRE: path is a file path or ":memory:"
// POST: foreign keys enforced, WAL enabled for file databases
func OpenDB(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// MigrateDB applies every migration newer than the recorded schema version.
// Each migration runs inside its own transaction together with its version bump.
// PRE: db is a valid database connection
// POST: schema_version equals LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %s: begin: %w", m.name, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: record version: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %s: commit: %w", m.name, err)
		}
		slog.Info("migration_applied", "name", m.name, "version", m.version)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
// PRE: db is a valid database connection
// POST: returns 0 if schema_version does not exist yet
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// LatestSchemaVersion returns the version of the newest embedded migration.
func LatestSchemaVersion() int {
	migrations, err := loadMigrations()
	if err != nil || len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].version
}

// loadMigrations reads NNN_name.sql files in version order.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: missing version prefix", e.Name())
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix: %w", e.Name(), err)
		}
		body, err := fs.ReadFile(migrationFiles, "migrations/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", e.Name(), err)
		}
		out = append(out, migration{version: v, name: e.Name(), sql: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}
