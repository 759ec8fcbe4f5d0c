package projections

import (
	"context"
	"time"

	bookingstore "gymhub/internal/adapters/storage/booking"
	classstore "gymhub/internal/adapters/storage/gymclass"
	"gymhub/internal/domain/trainer"
)

// TrainerPortalHorizon is how far ahead the trainer portal lists classes.
const TrainerPortalHorizon = 14 * 24 * time.Hour

// GetTrainerPortalQuery carries query parameters.
type GetTrainerPortalQuery struct {
	AccountID string
}

// GetTrainerPortalDeps holds dependencies for the trainer portal.
type GetTrainerPortalDeps struct {
	TrainerStore  TrainerStore
	ScheduleStore ScheduleStore
	BookingStore  BookingStore
	Now           func() time.Time
}

// ClassWithRoster is an upcoming class and the members booked into it.
type ClassWithRoster struct {
	classstore.ScheduledClass
	SpotsLeft int
	Roster    []bookingstore.RosterEntry
}

// TrainerPortal is the trainer portal home page.
type TrainerPortal struct {
	Trainer trainer.Trainer
	Classes []ClassWithRoster
}

// QueryGetTrainerPortal lists the signed-in trainer's upcoming classes with rosters.
// PRE: AccountID belongs to a trainer account
// POST: Classes are ordered by start time; cancelled classes are excluded
func QueryGetTrainerPortal(ctx context.Context, query GetTrainerPortalQuery, deps GetTrainerPortalDeps) (TrainerPortal, error) {
	now := clock(deps.Now)
	t, err := deps.TrainerStore.GetByAccountID(ctx, query.AccountID)
	if err != nil {
		return TrainerPortal{}, err
	}

	scheduled, err := deps.ScheduleStore.ListSchedule(ctx, classstore.ScheduleFilter{
		From:      now,
		To:        now.Add(TrainerPortalHorizon),
		TrainerID: t.ID,
	})
	if err != nil {
		return TrainerPortal{}, err
	}

	result := TrainerPortal{Trainer: t}
	for _, sc := range scheduled {
		roster, err := deps.BookingStore.ListRoster(ctx, sc.ID)
		if err != nil {
			return TrainerPortal{}, err
		}
		result.Classes = append(result.Classes, ClassWithRoster{
			ScheduledClass: sc,
			SpotsLeft:      spotsLeft(sc),
			Roster:         roster,
		})
	}
	return result, nil
}
