package booking

import (
	"context"
	"time"

	domain "gymhub/internal/domain/booking"
)

// Store persists Booking state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Save(ctx context.Context, value domain.Booking) error
	BookWithCapacity(ctx context.Context, b domain.Booking, now time.Time) error
	ListForMember(ctx context.Context, memberID string, from time.Time) ([]MemberBooking, error)
	ListRoster(ctx context.Context, classID string) ([]RosterEntry, error)
}

// MemberBooking is an active booking joined with its class, for the member portal.
type MemberBooking struct {
	domain.Booking
	ClassName       string
	StartsAt        time.Time
	DurationMinutes int
	Room            string
	TrainerName     string
}

// RosterEntry is a member booked into a class, for the trainer portal.
type RosterEntry struct {
	BookingID   string
	MemberID    string
	MemberName  string
	MemberEmail string
	BookedAt    time.Time
}
