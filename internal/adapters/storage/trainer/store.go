package trainer

import (
	"context"
	"errors"

	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/trainer"
)

// ErrDuplicateEmail is returned when another trainer or account already uses the email.
var ErrDuplicateEmail = errors.New("a trainer or account with that email already exists")

// Store persists Trainer state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Trainer, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Trainer, error)
	Save(ctx context.Context, value domain.Trainer) error
	CreateWithAccount(ctx context.Context, t domain.Trainer, a accountdomain.Account) error
	List(ctx context.Context, filter ListFilter) ([]domain.Trainer, error)
	CountActive(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status    string
	Specialty string
}
