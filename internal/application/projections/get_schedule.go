package projections

import (
	"context"
	"time"

	classstore "gymhub/internal/adapters/storage/gymclass"
	"gymhub/internal/domain/gymclass"
)

// ScheduleHorizon is how far ahead the public schedule looks by default.
const ScheduleHorizon = 7 * 24 * time.Hour

// GetScheduleQuery carries query parameters.
type GetScheduleQuery struct {
	TrainerID        string
	Days             int // 0 uses ScheduleHorizon
	IncludeCancelled bool
}

// GetScheduleDeps holds dependencies for the class schedule.
type GetScheduleDeps struct {
	ScheduleStore ScheduleStore
	Now           func() time.Time
}

// ScheduleEntry is one row of the class schedule.
type ScheduleEntry struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	TrainerID       string    `json:"trainer_id"`
	TrainerName     string    `json:"trainer_name"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Room            string    `json:"room,omitempty"`
	Capacity        int       `json:"capacity"`
	Booked          int       `json:"booked"`
	SpotsLeft       int       `json:"spots_left"`
	Status          string    `json:"status"`
}

// Full reports whether no spots remain.
func (e ScheduleEntry) Full() bool {
	return e.SpotsLeft == 0
}

// QueryGetSchedule lists upcoming classes with remaining capacity.
// POST: Entries are ordered by start time
// INVARIANT: SpotsLeft is never negative
func QueryGetSchedule(ctx context.Context, query GetScheduleQuery, deps GetScheduleDeps) ([]ScheduleEntry, error) {
	now := clock(deps.Now)
	horizon := ScheduleHorizon
	if query.Days > 0 {
		horizon = time.Duration(query.Days) * 24 * time.Hour
	}

	classes, err := deps.ScheduleStore.ListSchedule(ctx, classstore.ScheduleFilter{
		From:             now,
		To:               now.Add(horizon),
		TrainerID:        query.TrainerID,
		IncludeCancelled: query.IncludeCancelled,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, len(classes))
	for _, c := range classes {
		entries = append(entries, ScheduleEntry{
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			TrainerID:       c.TrainerID,
			TrainerName:     c.TrainerName,
			StartsAt:        c.StartsAt,
			EndsAt:          c.EndsAt(),
			DurationMinutes: c.DurationMinutes,
			Room:            c.Room,
			Capacity:        c.Capacity,
			Booked:          c.Booked,
			SpotsLeft:       spotsLeft(c),
			Status:          c.Status,
		})
	}
	return entries, nil
}

func spotsLeft(c classstore.ScheduledClass) int {
	if c.Status == gymclass.StatusCancelled {
		return 0
	}
	return max(c.Capacity-c.Booked, 0)
}
