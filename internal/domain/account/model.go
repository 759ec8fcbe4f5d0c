package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
	MinPasswordLen = 12
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
	RoleMember  = "member"
)

// Lockout policy
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleTrainer, RoleMember}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrNameTooLong      = errors.New("name cannot exceed 100 characters")
	ErrInvalidRole      = errors.New("role must be one of: admin, trainer, member")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNotFound         = errors.New("account not found")
)

// Account is a login identity. Members and trainers each own exactly one.
type Account struct {
	ID                     string
	Email                  string
	Name                   string
	PasswordHash           string
	Role                   string
	CreatedAt              time.Time
	FailedLogins           int
	LockedUntil            time.Time
	PasswordChangeRequired bool
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if len(a.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// once MaxFailedLogins is reached.
// POST: FailedLogins incremented; LockedUntil set if >= MaxFailedLogins
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin returns true if the account has admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
