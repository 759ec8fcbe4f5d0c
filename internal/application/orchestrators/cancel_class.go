package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/gymclass"
)

// ClassStoreForCancel defines the store interface needed by CancelClass.
type ClassStoreForCancel interface {
	GetByID(ctx context.Context, id string) (gymclass.Class, error)
	CancelWithBookings(ctx context.Context, id string) error
}

// RosterLister lists the members booked into a class.
type RosterLister interface {
	ListRoster(ctx context.Context, classID string) ([]bookingstore.RosterEntry, error)
}

// CancelClassInput carries input for the orchestrator.
type CancelClassInput struct {
	Actor   Actor
	ClassID string
}

// CancelClassDeps holds dependencies for CancelClass.
type CancelClassDeps struct {
	ClassStore   ClassStoreForCancel
	Roster       RosterLister
	TrainerStore TrainerLookup
	Outbox       OutboxWriter
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCancelClass cancels a scheduled class and releases its bookings.
// PRE: Actor is admin, or the trainer running the class
// POST: Class and its active bookings are cancelled; booked members are emailed
// Returns the number of members notified.
func ExecuteCancelClass(ctx context.Context, input CancelClassInput, deps CancelClassDeps) (int, error) {
	c, err := deps.ClassStore.GetByID(ctx, input.ClassID)
	if err != nil {
		return 0, fmt.Errorf("load class: %w", err)
	}

	switch input.Actor.Role {
	case account.RoleAdmin:
	case account.RoleTrainer:
		self, err := deps.TrainerStore.GetByAccountID(ctx, input.Actor.AccountID)
		if err != nil {
			return 0, fmt.Errorf("load trainer for account: %w", err)
		}
		if self.ID != c.TrainerID {
			return 0, gymclass.ErrNotOwner
		}
	default:
		return 0, ErrForbidden
	}

	now := clock(deps.Now)
	if c.Status == gymclass.StatusCancelled {
		return 0, validation.Wrap(gymclass.ErrAlreadyCancelled)
	}
	if !c.StartsAt.After(now) {
		return 0, validation.Wrap(gymclass.ErrAlreadyStarted)
	}

	roster, err := deps.Roster.ListRoster(ctx, c.ID)
	if err != nil {
		return 0, fmt.Errorf("list roster: %w", err)
	}

	if err := deps.ClassStore.CancelWithBookings(ctx, c.ID); err != nil {
		return 0, err
	}
	slog.Info("class_cancelled", "class_id", c.ID, "bookings_released", len(roster), "by_role", input.Actor.Role)

	notified := 0
	for _, r := range roster {
		p := classCancelledEmail(r.MemberName, r.MemberEmail, c.Name, c.StartsAt)
		if err := enqueueEmail(ctx, deps.Outbox, newID(deps.GenerateID), p, now); err == nil {
			notified++
		}
	}
	return notified, nil
}
