package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID              string
	Email                  string
	Name                   string
	Role                   string
	PasswordChangeRequired bool
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked after too many failed attempts, try again in 15 minutes")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: none
// POST: Returns account info on success, records failed login on failure
// INVARIANT: Locked accounts never log in, even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := clock(deps.Now)

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load account: %w", err)
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "login_record_failed", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		if acct.IsLocked(now) {
			slog.Warn("auth_event", "event", "account_locked", "email", email)
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return LoginResult{}, fmt.Errorf("reset failed logins: %w", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)

	return LoginResult{
		AccountID:              acct.ID,
		Email:                  acct.Email,
		Name:                   acct.Name,
		Role:                   acct.Role,
		PasswordChangeRequired: acct.PasswordChangeRequired,
	}, nil
}
