package account

import (
	"context"
	"errors"

	domain "gymhub/internal/domain/account"
)

// ErrDuplicateEmail is returned when an account with the same email exists.
var ErrDuplicateEmail = errors.New("an account with that email already exists")

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
