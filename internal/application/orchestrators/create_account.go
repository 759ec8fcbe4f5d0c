package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accountstore "gymhub/internal/adapters/storage/account"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email                  string `validate:"required,email,max=254" label:"Email"`
	Name                   string `validate:"max=100" label:"Name"`
	Password               string `validate:"required,min=12" label:"Password"`
	Role                   string `validate:"required,oneof=admin trainer member" label:"Role"`
	PasswordChangeRequired bool
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: none
// POST: Account created with hashed password, or *validation.Errors
// INVARIANT: Email must be unique (enforced by store)
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return "", err
	}

	acct := account.Account{
		ID:                     newID(deps.GenerateID),
		Email:                  input.Email,
		Name:                   input.Name,
		Role:                   input.Role,
		CreatedAt:              clock(deps.Now),
		PasswordChangeRequired: input.PasswordChangeRequired,
	}
	if err := acct.Validate(); err != nil {
		return "", validation.Wrap(err)
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", validation.Wrap(err)
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			return "", validation.Wrap(ErrEmailAlreadyExists)
		}
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct.ID, nil
}

// ExecuteSeedAdmin creates the first admin account if no accounts exist.
// PRE: Database is migrated
// POST: Admin account created if count == 0; returns whether one was created
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) (bool, error) {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  email,
		Name:                   "Administrator",
		Password:               password,
		Role:                   account.RoleAdmin,
		PasswordChangeRequired: true,
	}, deps); err != nil {
		return false, err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return true, nil
}
