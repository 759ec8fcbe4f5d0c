package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/gymclass"
	"gymhub/internal/domain/trainer"
)

// ClassFormLayout is the layout of the datetime-local form field.
const ClassFormLayout = "2006-01-02T15:04"

// TrainerLookup resolves trainers for class operations.
type TrainerLookup interface {
	GetByID(ctx context.Context, id string) (trainer.Trainer, error)
	GetByAccountID(ctx context.Context, accountID string) (trainer.Trainer, error)
}

// ClassStoreForCreate defines the store interface needed by CreateClass.
type ClassStoreForCreate interface {
	CreateUnlessOverlapping(ctx context.Context, c gymclass.Class) (gymclass.Class, error)
}

// CreateClassInput carries the class creation form.
type CreateClassInput struct {
	Actor           Actor
	TrainerID       string // chosen by admins; trainers always create their own classes
	Name            string `validate:"required,max=100" label:"Name"`
	Description     string `validate:"max=1000" label:"Description"`
	StartsAt        string `validate:"required,datetime=2006-01-02T15:04" label:"Start time"`
	DurationMinutes int    `validate:"min=15,max=240" label:"Duration"`
	Capacity        int    `validate:"min=1,max=100" label:"Capacity"`
	Room            string `validate:"max=50" label:"Room"`
}

// CreateClassDeps holds dependencies for CreateClass.
type CreateClassDeps struct {
	TrainerStore TrainerLookup
	ClassStore   ClassStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
	Location     *time.Location // zone of the form's start time; UTC when nil
}

// ExecuteCreateClass schedules a class for an active trainer.
// PRE: Actor is admin or trainer
// POST: Class saved as scheduled
// INVARIANT: A trainer never has two overlapping scheduled classes
func ExecuteCreateClass(ctx context.Context, input CreateClassInput, deps CreateClassDeps) (gymclass.Class, error) {
	if input.Actor.Role != account.RoleAdmin && input.Actor.Role != account.RoleTrainer {
		return gymclass.Class{}, ErrForbidden
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Room = strings.TrimSpace(input.Room)
	input.StartsAt = strings.TrimSpace(input.StartsAt)
	if err := validation.Struct(input); err != nil {
		return gymclass.Class{}, err
	}

	t, err := resolveClassTrainer(ctx, input.Actor, input.TrainerID, deps.TrainerStore)
	if err != nil {
		return gymclass.Class{}, err
	}
	if !t.IsActive() {
		return gymclass.Class{}, validation.Wrap(trainer.ErrInactive)
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	startsAt, err := time.ParseInLocation(ClassFormLayout, input.StartsAt, loc)
	if err != nil {
		return gymclass.Class{}, validation.Wrap(gymclass.ErrEmptyStart)
	}
	now := clock(deps.Now)

	c := gymclass.Class{
		ID:              newID(deps.GenerateID),
		Name:            input.Name,
		Description:     input.Description,
		TrainerID:       t.ID,
		StartsAt:        startsAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Capacity:        input.Capacity,
		Room:            input.Room,
		Status:          gymclass.StatusScheduled,
		CreatedAt:       now,
	}
	if err := c.Validate(); err != nil {
		return gymclass.Class{}, validation.Wrap(err)
	}
	if !c.StartsAt.After(now) {
		return gymclass.Class{}, validation.Wrap(gymclass.ErrInPast)
	}

	// The overlap check and the insert share one transaction in the store.
	other, err := deps.ClassStore.CreateUnlessOverlapping(ctx, c)
	if errors.Is(err, gymclass.ErrTrainerOverlap) {
		return gymclass.Class{}, validation.Wrap(fmt.Errorf("%w (%s at %s)",
			gymclass.ErrTrainerOverlap, other.Name, other.StartsAt.In(loc).Format("15:04")))
	}
	if err != nil {
		return gymclass.Class{}, fmt.Errorf("create class: %w", err)
	}

	slog.Info("class_created", "class_id", c.ID, "trainer_id", c.TrainerID, "starts_at", c.StartsAt, "by_role", input.Actor.Role)
	return c, nil
}

func resolveClassTrainer(ctx context.Context, actor Actor, trainerID string, store TrainerLookup) (trainer.Trainer, error) {
	if actor.Role == account.RoleTrainer {
		self, err := store.GetByAccountID(ctx, actor.AccountID)
		if err != nil {
			return trainer.Trainer{}, fmt.Errorf("load trainer for account: %w", err)
		}
		if trainerID != "" && trainerID != self.ID {
			return trainer.Trainer{}, gymclass.ErrNotOwner
		}
		return self, nil
	}
	if trainerID == "" {
		return trainer.Trainer{}, validation.Wrap(gymclass.ErrEmptyTrainer)
	}
	t, err := store.GetByID(ctx, trainerID)
	if errors.Is(err, trainer.ErrNotFound) {
		return trainer.Trainer{}, validation.Wrap(err)
	}
	return t, err
}
