package equipment

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/equipment"
)

const selectColumns = "id, name, category, serial_number, purchase_date, purchase_price_cents, status, last_serviced_on, notes, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EquipmentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves Equipment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Equipment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM equipment WHERE id = ?", id)
	return scanEquipment(row.Scan)
}

// Save persists Equipment to the database.
// PRE: entity has been validated
// POST: Entity is persisted; domain.ErrDuplicateSerial if the serial is taken
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Equipment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO equipment (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, category=excluded.category, serial_number=excluded.serial_number,
		   purchase_date=excluded.purchase_date, purchase_price_cents=excluded.purchase_price_cents,
		   status=excluded.status, last_serviced_on=excluded.last_serviced_on, notes=excluded.notes`,
		entity.ID,
		entity.Name,
		entity.Category,
		strings.TrimSpace(entity.SerialNumber),
		storage.FormatDate(entity.PurchaseDate),
		entity.PurchasePriceCents,
		entity.Status,
		storage.FormatDate(entity.LastServicedOn),
		entity.Notes,
		storage.FormatTime(entity.CreatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateSerial
	}
	return err
}

// List retrieves Equipment based on the filter, ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Equipment, error) {
	var queryBuilder strings.Builder
	var clauses []string
	var args []any

	queryBuilder.WriteString("SELECT " + selectColumns + " FROM equipment")
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if len(clauses) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	queryBuilder.WriteString(" ORDER BY name, serial_number LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// CountByStatus returns equipment counts keyed by status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM equipment GROUP BY status")
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

// scanEquipment extracts Equipment from a row scanner function.
func scanEquipment(scan func(dest ...any) error) (domain.Equipment, error) {
	var e domain.Equipment
	var purchaseDate, lastServiced, createdAt string
	err := scan(&e.ID, &e.Name, &e.Category, &e.SerialNumber, &purchaseDate,
		&e.PurchasePriceCents, &e.Status, &lastServiced, &e.Notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Equipment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Equipment{}, err
	}
	e.PurchaseDate, _ = storage.ParseDate(purchaseDate)
	e.LastServicedOn, _ = storage.ParseDate(lastServiced)
	e.CreatedAt, _ = storage.ParseTime(createdAt)
	return e, nil
}
