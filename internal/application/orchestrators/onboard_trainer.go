package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	trainerstore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/payment"
	"gymhub/internal/domain/trainer"
)

// TrainerStoreForOnboard defines the store interface needed by OnboardTrainer.
type TrainerStoreForOnboard interface {
	CreateWithAccount(ctx context.Context, t trainer.Trainer, a account.Account) error
}

// OnboardTrainerInput carries the trainer onboarding form.
type OnboardTrainerInput struct {
	Name            string `validate:"required,max=100" label:"Name"`
	Email           string `validate:"required,email,max=254" label:"Email"`
	Phone           string `validate:"max=25" label:"Phone"`
	Specialty       string `validate:"required" label:"Specialty"`
	Certification   string `validate:"required,max=120" label:"Certification"`
	ExperienceYears int    `validate:"min=0,max=60" label:"Experience"`
	HourlyRate      string `label:"Hourly rate"` // decimal; empty means 0
	Bio             string `validate:"max=2000" label:"Bio"`
}

// OnboardTrainerResult carries the created IDs and the one-time temporary password.
type OnboardTrainerResult struct {
	TrainerID    string
	AccountID    string
	TempPassword string
}

// OnboardTrainerDeps holds dependencies for OnboardTrainer.
type OnboardTrainerDeps struct {
	TrainerStore TrainerStoreForOnboard
	Outbox       OutboxWriter
	GenerateID   func() string
	Now          func() time.Time
}

var ErrTrainerEmailTaken = errors.New("a trainer or account with this email already exists")

// ExecuteOnboardTrainer creates a trainer profile with a trainer login.
// PRE: caller is admin
// POST: Trainer (active) and account (password change required) created together; welcome email queued
func ExecuteOnboardTrainer(ctx context.Context, input OnboardTrainerInput, deps OnboardTrainerDeps) (OnboardTrainerResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.Certification = strings.TrimSpace(input.Certification)
	input.Bio = strings.TrimSpace(input.Bio)

	errs := &validation.Errors{}
	validation.CheckStruct(errs, input)
	rate := 0
	if s := strings.TrimSpace(input.HourlyRate); s != "" {
		cents, err := payment.ParseCents(s)
		if err != nil {
			errs.Add("Hourly rate must be a number with at most two decimals")
		}
		rate = cents
	}
	if err := errs.Err(); err != nil {
		return OnboardTrainerResult{}, err
	}

	now := clock(deps.Now)
	password, err := GeneratePassword(TempPasswordLength)
	if err != nil {
		return OnboardTrainerResult{}, fmt.Errorf("generate password: %w", err)
	}

	acct := account.Account{
		ID:                     newID(deps.GenerateID),
		Email:                  input.Email,
		Name:                   input.Name,
		Role:                   account.RoleTrainer,
		CreatedAt:              now,
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(password); err != nil {
		return OnboardTrainerResult{}, err
	}

	t := trainer.Trainer{
		ID:              newID(deps.GenerateID),
		AccountID:       acct.ID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Specialty:       input.Specialty,
		Certification:   input.Certification,
		ExperienceYears: input.ExperienceYears,
		HourlyRateCents: rate,
		Bio:             input.Bio,
		Status:          trainer.StatusActive,
		HiredOn:         now,
	}
	errs.Check(acct.Validate())
	errs.Check(t.Validate())
	if err := errs.Err(); err != nil {
		return OnboardTrainerResult{}, err
	}

	if err := deps.TrainerStore.CreateWithAccount(ctx, t, acct); err != nil {
		if errors.Is(err, trainerstore.ErrDuplicateEmail) {
			return OnboardTrainerResult{}, validation.Wrap(ErrTrainerEmailTaken)
		}
		return OnboardTrainerResult{}, fmt.Errorf("create trainer: %w", err)
	}

	slog.Info("trainer_onboarded", "trainer_id", t.ID, "specialty", t.Specialty)
	_ = enqueueEmail(ctx, deps.Outbox, newID(deps.GenerateID), welcomeTrainerEmail(t.Name, acct.Email), now)

	return OnboardTrainerResult{TrainerID: t.ID, AccountID: acct.ID, TempPassword: password}, nil
}

// TrainerStoreForDeactivate defines the store interface needed by DeactivateTrainer.
type TrainerStoreForDeactivate interface {
	GetByID(ctx context.Context, id string) (trainer.Trainer, error)
	Save(ctx context.Context, t trainer.Trainer) error
}

// DeactivateTrainerDeps holds dependencies for DeactivateTrainer.
type DeactivateTrainerDeps struct {
	TrainerStore TrainerStoreForDeactivate
}

// ExecuteDeactivateTrainer removes a trainer from the assignable pool.
// Already scheduled classes are left in place for the admin to reassign or cancel.
// PRE: caller is admin
// POST: Trainer status is inactive
func ExecuteDeactivateTrainer(ctx context.Context, trainerID string, deps DeactivateTrainerDeps) error {
	t, err := deps.TrainerStore.GetByID(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("load trainer: %w", err)
	}
	if err := t.Deactivate(); err != nil {
		return validation.Wrap(err)
	}
	if err := deps.TrainerStore.Save(ctx, t); err != nil {
		return err
	}
	slog.Info("trainer_deactivated", "trainer_id", t.ID)
	return nil
}
