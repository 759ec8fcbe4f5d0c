package projections

import (
	"context"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	classstore "gymhub/internal/adapters/storage/gymclass"
	memberstore "gymhub/internal/adapters/storage/member"
	paymentstore "gymhub/internal/adapters/storage/payment"
	storystore "gymhub/internal/adapters/storage/story"
	"gymhub/internal/adapters/storage/report"
	domainMember "gymhub/internal/domain/member"
	domainPayment "gymhub/internal/domain/payment"
	domainStory "gymhub/internal/domain/story"
	domainTrainer "gymhub/internal/domain/trainer"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByAccountID(ctx context.Context, accountID string) (domainMember.Member, error)
	List(ctx context.Context, filter memberstore.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter memberstore.ListFilter) (int, error)
}

// TrainerStore interface for trainer queries.
type TrainerStore interface {
	GetByAccountID(ctx context.Context, accountID string) (domainTrainer.Trainer, error)
}

// ScheduleStore interface for class schedule queries.
type ScheduleStore interface {
	ListSchedule(ctx context.Context, filter classstore.ScheduleFilter) ([]classstore.ScheduledClass, error)
}

// BookingStore interface for booking queries.
type BookingStore interface {
	ListForMember(ctx context.Context, memberID string, from time.Time) ([]bookingstore.MemberBooking, error)
	ListRoster(ctx context.Context, classID string) ([]bookingstore.RosterEntry, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	ListForMember(ctx context.Context, memberID string, limit int) ([]domainPayment.Payment, error)
	List(ctx context.Context, filter paymentstore.ListFilter) ([]paymentstore.PaymentRow, error)
}

// StoryStore interface for story queries.
type StoryStore interface {
	List(ctx context.Context, filter storystore.ListFilter) ([]storystore.AuthoredStory, error)
	ListForMember(ctx context.Context, memberID string) ([]domainStory.Story, error)
}

// ReportStore interface for revenue and load aggregates.
type ReportStore interface {
	RevenueByMonth(ctx context.Context, from, to time.Time) ([]report.MonthTotal, error)
	RevenueByMethod(ctx context.Context, from, to time.Time) ([]report.MethodTotal, error)
	RevenueByPlan(ctx context.Context, from, to time.Time) ([]report.PlanTotal, error)
	TrainerLoads(ctx context.Context, from, to time.Time) ([]report.TrainerLoad, error)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}
