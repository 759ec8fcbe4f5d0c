package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/booking"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/member"
)

// MemberLookup resolves the member behind a login account.
type MemberLookup interface {
	GetByAccountID(ctx context.Context, accountID string) (member.Member, error)
}

// BookingStoreForBook defines the store interface needed by BookClass.
type BookingStoreForBook interface {
	BookWithCapacity(ctx context.Context, b booking.Booking, now time.Time) error
}

// BookClassInput carries input for the orchestrator.
type BookClassInput struct {
	AccountID string // the member's login account
	ClassID   string
}

// BookClassDeps holds dependencies for BookClass.
type BookClassDeps struct {
	MemberStore  MemberLookup
	BookingStore BookingStoreForBook
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteBookClass reserves a place in a class for the logged-in member.
// PRE: caller is a member
// POST: Booking saved as booked
// INVARIANT: Bookings never exceed class capacity (checked inside the store transaction)
func ExecuteBookClass(ctx context.Context, input BookClassInput, deps BookClassDeps) (booking.Booking, error) {
	if input.ClassID == "" {
		return booking.Booking{}, validation.Wrap(booking.ErrEmptyClass)
	}
	m, err := deps.MemberStore.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("load member: %w", err)
	}
	if !m.IsActive() {
		return booking.Booking{}, validation.Wrap(member.ErrNotActive)
	}

	now := clock(deps.Now)
	b := booking.Booking{
		ID:       newID(deps.GenerateID),
		ClassID:  input.ClassID,
		MemberID: m.ID,
		Status:   booking.StatusBooked,
		BookedAt: now,
	}
	if err := deps.BookingStore.BookWithCapacity(ctx, b, now); err != nil {
		switch {
		case errors.Is(err, booking.ErrClassFull),
			errors.Is(err, booking.ErrAlreadyBooked),
			errors.Is(err, booking.ErrClassStarted),
			errors.Is(err, gymclass.ErrAlreadyCancelled):
			return booking.Booking{}, validation.Wrap(err)
		}
		return booking.Booking{}, err
	}

	slog.Info("class_booked", "booking_id", b.ID, "class_id", b.ClassID, "member_id", m.ID)
	return b, nil
}
