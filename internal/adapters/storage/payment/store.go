package payment

import (
	"context"
	"time"

	memberdomain "gymhub/internal/domain/member"
	domain "gymhub/internal/domain/payment"
)

// Store persists Payment state.
type Store interface {
	RecordWithMembership(ctx context.Context, p domain.Payment, update func(*memberdomain.Member) error) (memberdomain.Member, error)
	ListForMember(ctx context.Context, memberID string, limit int) ([]domain.Payment, error)
	List(ctx context.Context, filter ListFilter) ([]PaymentRow, error)
	SumBetween(ctx context.Context, from, to time.Time) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	From     time.Time
	To       time.Time
	MemberID string
	Method   string
	Limit    int
	Offset   int
}

// PaymentRow is a payment joined with the member's name for the admin ledger.
type PaymentRow struct {
	domain.Payment
	MemberName string
}
