package member

import (
	"context"
	"errors"
	"time"

	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/member"
)

// ErrDuplicateEmail is returned when another member or account already uses the email.
var ErrDuplicateEmail = errors.New("a member with that email already exists")

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	CreateWithAccount(ctx context.Context, m domain.Member, a accountdomain.Account) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	ListLapsed(ctx context.Context, today time.Time) ([]domain.Member, error)
	Update(ctx context.Context, id string, change func(*domain.Member) error) (domain.Member, error)
	ExpireIfLapsed(ctx context.Context, id string, today time.Time) (bool, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Search string // matches name or email
	Status string
	Plan   string
	Sort   string // one of SortColumns
	Dir    string // "asc" or "desc"
}

// SortColumns are the columns List accepts in ListFilter.Sort.
var SortColumns = []string{"name", "email", "plan", "status", "expires_on", "joined_at"}
