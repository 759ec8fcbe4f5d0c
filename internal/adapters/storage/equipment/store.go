package equipment

import (
	"context"

	domain "gymhub/internal/domain/equipment"
)

// Store persists Equipment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Equipment, error)
	Save(ctx context.Context, value domain.Equipment) error
	List(ctx context.Context, filter ListFilter) ([]domain.Equipment, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit    int
	Offset   int
	Category string
	Status   string
}
