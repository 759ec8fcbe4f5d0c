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
)

// BookingStoreForCancel defines the store interface needed by CancelBooking.
type BookingStoreForCancel interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Save(ctx context.Context, b booking.Booking) error
}

// ClassGetter loads a class.
type ClassGetter interface {
	GetByID(ctx context.Context, id string) (gymclass.Class, error)
}

// CancelBookingInput carries input for the orchestrator.
type CancelBookingInput struct {
	AccountID string
	BookingID string
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	MemberStore  MemberLookup
	BookingStore BookingStoreForCancel
	ClassStore   ClassGetter
	Now          func() time.Time
}

// ExecuteCancelBooking releases the member's own place, up until the class starts.
// PRE: caller is a member
// POST: Booking status is cancelled
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) error {
	m, err := deps.MemberStore.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		return fmt.Errorf("load member: %w", err)
	}
	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return err
	}
	if b.MemberID != m.ID {
		return booking.ErrNotOwner
	}

	c, err := deps.ClassStore.GetByID(ctx, b.ClassID)
	if err != nil {
		return fmt.Errorf("load class: %w", err)
	}
	if !c.StartsAt.After(clock(deps.Now)) {
		return validation.Wrap(booking.ErrClassStarted)
	}

	if err := b.Cancel(m.ID); err != nil {
		if errors.Is(err, booking.ErrAlreadyCancelled) {
			return validation.Wrap(err)
		}
		return err
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return err
	}

	slog.Info("booking_cancelled", "booking_id", b.ID, "class_id", b.ClassID, "member_id", m.ID)
	return nil
}
