package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
)

const testPassword = "correct-horse-battery"

func newTestAccount(t *testing.T, id, email, role string) account.Account {
	t.Helper()
	a := account.Account{ID: id, Email: email, Name: "Test", Role: role, CreatedAt: fixedTime}
	if err := a.SetPassword(testPassword); err != nil {
		t.Fatalf("set password: %v", err)
	}
	return a
}

func TestExecuteLogin(t *testing.T) {
	base := newTestAccount(t, "acc-1", "pat@gym.test", account.RoleTrainer)
	locked := base
	locked.FailedLogins = account.MaxFailedLogins
	locked.LockedUntil = fixedTime.Add(10 * time.Minute)
	expiredLock := locked
	expiredLock.LockedUntil = fixedTime.Add(-time.Minute)

	tests := []struct {
		name     string
		stored   account.Account
		email    string
		password string
		wantErr  error
		wantFail int
	}{
		{name: "success", stored: base, email: "pat@gym.test", password: testPassword},
		{name: "email is trimmed", stored: base, email: "  pat@gym.test ", password: testPassword},
		{name: "wrong password", stored: base, email: "pat@gym.test", password: "nope-nope-nope", wantErr: ErrInvalidCredentials, wantFail: 1},
		{name: "unknown email", stored: base, email: "who@gym.test", password: testPassword, wantErr: ErrInvalidCredentials},
		{name: "empty input", stored: base, email: "", password: "", wantErr: ErrInvalidCredentials},
		{name: "locked", stored: locked, email: "pat@gym.test", password: testPassword, wantErr: ErrAccountLocked, wantFail: account.MaxFailedLogins},
		{name: "lock expired", stored: expiredLock, email: "pat@gym.test", password: testPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAccountStore(tt.stored)
			res, err := ExecuteLogin(context.Background(), LoginInput{Email: tt.email, Password: tt.password},
				LoginDeps{AccountStore: store, Now: fixedNow})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			got := store.accounts["acc-1"]
			if got.FailedLogins != tt.wantFail {
				t.Errorf("FailedLogins = %d, want %d", got.FailedLogins, tt.wantFail)
			}
			if tt.wantErr == nil {
				if res.AccountID != "acc-1" || res.Role != account.RoleTrainer {
					t.Errorf("result = %+v", res)
				}
				if !got.LockedUntil.IsZero() {
					t.Errorf("lock not cleared: %v", got.LockedUntil)
				}
			}
		})
	}
}

func TestExecuteLogin_LocksAfterRepeatedFailures(t *testing.T) {
	store := newMockAccountStore(newTestAccount(t, "acc-1", "pat@gym.test", account.RoleMember))
	deps := LoginDeps{AccountStore: store, Now: fixedNow}

	for i := 0; i < account.MaxFailedLogins; i++ {
		_, err := ExecuteLogin(context.Background(), LoginInput{Email: "pat@gym.test", Password: "wrong-password-x"}, deps)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v", i+1, err)
		}
	}
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "pat@gym.test", Password: testPassword}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}

	later := LoginDeps{AccountStore: store, Now: func() time.Time { return fixedTime.Add(account.LockoutDuration + time.Second) }}
	if _, err := ExecuteLogin(context.Background(), LoginInput{Email: "pat@gym.test", Password: testPassword}, later); err != nil {
		t.Fatalf("after lockout: %v", err)
	}
}

func TestExecuteLogin_StoreError(t *testing.T) {
	store := &failingAccountStore{}
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@b.c", Password: "x"}, LoginDeps{AccountStore: store})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v", err)
	}
}

type failingAccountStore struct{}

func (failingAccountStore) GetByEmail(context.Context, string) (account.Account, error) {
	return account.Account{}, errStoreDown
}

func (failingAccountStore) Save(context.Context, account.Account) error { return errStoreDown }

func TestExecuteCreateAccount(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateAccountInput
		wantMsgs  int
		wantSaved bool
	}{
		{
			name:      "valid",
			input:     CreateAccountInput{Email: "new@gym.test", Name: "New", Password: testPassword, Role: account.RoleAdmin},
			wantSaved: true,
		},
		{
			name:     "collects every problem",
			input:    CreateAccountInput{Email: "bad", Password: "short", Role: "owner"},
			wantMsgs: 3,
		},
		{
			name:     "missing fields",
			input:    CreateAccountInput{},
			wantMsgs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAccountStore()
			id, err := ExecuteCreateAccount(context.Background(), tt.input, CreateAccountDeps{
				AccountStore: store, GenerateID: sequentialIDs(), Now: fixedNow,
			})
			if got := len(validation.Messages(err)); got != tt.wantMsgs {
				t.Fatalf("messages = %v, want %d", validation.Messages(err), tt.wantMsgs)
			}
			if _, saved := store.accounts[id]; saved != tt.wantSaved {
				t.Errorf("saved = %v, want %v", saved, tt.wantSaved)
			}
			if tt.wantSaved && store.accounts[id].PasswordHash == testPassword {
				t.Error("password stored in plain text")
			}
		})
	}
}

func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: store, GenerateID: sequentialIDs(), Now: fixedNow}

	created, err := ExecuteSeedAdmin(context.Background(), deps, "admin@gym.test", testPassword)
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	admin := store.accounts["id-1"]
	if admin.Role != account.RoleAdmin || !admin.PasswordChangeRequired {
		t.Errorf("admin = %+v", admin)
	}

	created, err = ExecuteSeedAdmin(context.Background(), deps, "other@gym.test", testPassword)
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts = %d, want 1", len(store.accounts))
	}
}

func TestExecuteChangePassword(t *testing.T) {
	const newPassword = "a-much-better-password"
	tests := []struct {
		name    string
		input   ChangePasswordInput
		wantErr bool
	}{
		{name: "success", input: ChangePasswordInput{AccountID: "acc-1", CurrentPassword: testPassword, NewPassword: newPassword, ConfirmPassword: newPassword}},
		{name: "wrong current", input: ChangePasswordInput{AccountID: "acc-1", CurrentPassword: "not-my-password", NewPassword: newPassword, ConfirmPassword: newPassword}, wantErr: true},
		{name: "confirmation mismatch", input: ChangePasswordInput{AccountID: "acc-1", CurrentPassword: testPassword, NewPassword: newPassword, ConfirmPassword: newPassword + "x"}, wantErr: true},
		{name: "same as current", input: ChangePasswordInput{AccountID: "acc-1", CurrentPassword: testPassword, NewPassword: testPassword, ConfirmPassword: testPassword}, wantErr: true},
		{name: "too short", input: ChangePasswordInput{AccountID: "acc-1", CurrentPassword: testPassword, NewPassword: "short", ConfirmPassword: "short"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount(t, "acc-1", "pat@gym.test", account.RoleMember)
			a.PasswordChangeRequired = true
			store := newMockAccountStore(a)

			err := ExecuteChangePassword(context.Background(), tt.input, ChangePasswordDeps{AccountStore: store})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if validation.Messages(err) == nil {
					t.Errorf("expected a validation error, got %v", err)
				}
				return
			}
			got := store.accounts["acc-1"]
			if got.PasswordChangeRequired {
				t.Error("PasswordChangeRequired not cleared")
			}
			if err := got.CheckPassword(newPassword); err != nil {
				t.Errorf("new password does not verify: %v", err)
			}
		})
	}
}
