package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string `validate:"required"`
	CurrentPassword string `validate:"required" label:"Current password"`
	NewPassword     string `validate:"required,min=12" label:"New password"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword" label:"Password confirmation"`
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword validates the current password and updates to the new one.
// PRE: AccountID is the logged-in account
// POST: Password is updated, PasswordChangeRequired is cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return validation.Wrap(ErrCurrentPasswordWrong)
	}
	if input.CurrentPassword == input.NewPassword {
		return validation.Wrap(ErrNewPasswordSame)
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return validation.Wrap(err)
	}
	acct.PasswordChangeRequired = false

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", input.AccountID)
	return nil
}
