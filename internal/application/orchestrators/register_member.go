package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	memberstore "gymhub/internal/adapters/storage/member"
	"gymhub/internal/application/validation"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/member"
)

// MemberStoreForRegister defines the store interface needed by RegisterMember.
type MemberStoreForRegister interface {
	CreateWithAccount(ctx context.Context, m member.Member, a account.Account) error
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name     string `validate:"required,max=100" label:"Name"`
	Email    string `validate:"required,email,max=254" label:"Email"`
	Phone    string `validate:"max=25" label:"Phone"`
	Plan     string `validate:"required,oneof=basic standard premium" label:"Plan"`
	Password string `validate:"omitempty,min=12" label:"Password"` // generated when empty
}

// RegisterMemberResult carries the created IDs and the temporary password,
// which is shown to the admin once and never stored in plain text.
type RegisterMemberResult struct {
	MemberID     string
	AccountID    string
	TempPassword string
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStoreForRegister
	Outbox      OutboxWriter
	GenerateID  func() string
	Now         func() time.Time
}

var ErrMemberEmailTaken = errors.New("a member or account with this email already exists")

// ExecuteRegisterMember creates a member with a login account.
// PRE: caller is admin
// POST: Member (status pending) and member account created together; welcome email queued
// INVARIANT: Email must be unique across members and accounts (enforced by store)
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (RegisterMemberResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Struct(input); err != nil {
		return RegisterMemberResult{}, err
	}

	now := clock(deps.Now)
	password := input.Password
	generated := password == ""
	if generated {
		p, err := GeneratePassword(TempPasswordLength)
		if err != nil {
			return RegisterMemberResult{}, fmt.Errorf("generate password: %w", err)
		}
		password = p
	}

	acct := account.Account{
		ID:                     newID(deps.GenerateID),
		Email:                  input.Email,
		Name:                   input.Name,
		Role:                   account.RoleMember,
		CreatedAt:              now,
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(password); err != nil {
		return RegisterMemberResult{}, validation.Wrap(err)
	}

	m := member.Member{
		ID:        newID(deps.GenerateID),
		AccountID: acct.ID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Plan:      input.Plan,
		Status:    member.StatusPending,
		JoinedAt:  now,
	}
	errs := &validation.Errors{}
	errs.Check(acct.Validate())
	errs.Check(m.Validate())
	if err := errs.Err(); err != nil {
		return RegisterMemberResult{}, err
	}

	if err := deps.MemberStore.CreateWithAccount(ctx, m, acct); err != nil {
		if errors.Is(err, memberstore.ErrDuplicateEmail) {
			return RegisterMemberResult{}, validation.Wrap(ErrMemberEmailTaken)
		}
		return RegisterMemberResult{}, fmt.Errorf("create member: %w", err)
	}

	slog.Info("member_registered", "member_id", m.ID, "plan", m.Plan)
	_ = enqueueEmail(ctx, deps.Outbox, newID(deps.GenerateID), welcomeMemberEmail(m, acct.Email), now)

	result := RegisterMemberResult{MemberID: m.ID, AccountID: acct.ID}
	if generated {
		result.TempPassword = password
	}
	return result, nil
}
