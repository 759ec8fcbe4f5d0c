package gymclass

import (
	"context"
	"time"

	domain "gymhub/internal/domain/gymclass"
)

// Store persists Class state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
	CreateUnlessOverlapping(ctx context.Context, c domain.Class) (domain.Class, error)
	ListForTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]domain.Class, error)
	ListSchedule(ctx context.Context, filter ScheduleFilter) ([]ScheduledClass, error)
	CancelWithBookings(ctx context.Context, id string) error
	CountUpcoming(ctx context.Context, now time.Time) (int, error)
}

// ScheduleFilter selects classes for the schedule views.
type ScheduleFilter struct {
	From             time.Time
	To               time.Time // zero for no upper bound
	TrainerID        string
	IncludeCancelled bool
	Limit            int
}

// ScheduledClass is a class joined with its trainer and current booking count.
type ScheduledClass struct {
	domain.Class
	TrainerName string
	Booked      int
}
