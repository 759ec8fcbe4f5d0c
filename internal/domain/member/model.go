package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 25
)

// DateLayout is the on-disk and form layout for membership dates.
const DateLayout = "2006-01-02"

// Membership status constants
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
)

// Plan constants
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// PlanMonthlyPriceCents is the list price per month for each plan.
var PlanMonthlyPriceCents = map[string]int{
	PlanBasic:    3000,
	PlanStandard: 5000,
	PlanPremium:  8000,
}

// ValidPlans and ValidStatuses enumerate the accepted values, in display order.
var (
	ValidPlans    = []string{PlanBasic, PlanStandard, PlanPremium}
	ValidStatuses = []string{StatusPending, StatusActive, StatusExpired, StatusSuspended}
)

// Domain errors
var (
	ErrNotFound          = errors.New("member not found")
	ErrEmptyName         = errors.New("member name cannot be empty")
	ErrNameTooLong       = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail      = errors.New("member email must be valid")
	ErrPhoneTooLong      = errors.New("phone cannot exceed 25 characters")
	ErrInvalidPlan       = errors.New("plan must be 'basic', 'standard', or 'premium'")
	ErrInvalidStatus     = errors.New("status must be 'pending', 'active', 'expired', or 'suspended'")
	ErrSuspended         = errors.New("member is suspended")
	ErrInvalidMonths     = errors.New("membership can only be extended by 1 to 12 months")
	ErrNotActive         = errors.New("membership is not active")
	ErrAlreadySuspended  = errors.New("member is already suspended")
	ErrNotSuspended      = errors.New("member is not suspended")
	ErrInvalidTransition = errors.New("status can only be changed to 'suspended' or back from it")
)

// Member is a gym customer and their membership state.
type Member struct {
	ID        string
	AccountID string
	Name      string
	Email     string
	Phone     string
	Plan      string
	Status    string
	ExpiresOn time.Time // zero until the first payment
	JoinedAt  time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if len(m.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	if !IsValidPlan(m.Plan) {
		return ErrInvalidPlan
	}
	if !isValidStatus(m.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the membership is currently active.
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// ExtendMembership applies a paid period to the membership.
// The new period starts at the later of today and the current expiry,
// so paying early never loses remaining days.
// PRE: months in 1..12, member not suspended
// POST: Status is active, ExpiresOn advanced by months
func (m *Member) ExtendMembership(months int, today time.Time) error {
	if m.Status == StatusSuspended {
		return ErrSuspended
	}
	if months < 1 || months > 12 {
		return ErrInvalidMonths
	}
	start := truncateDay(today)
	if !m.ExpiresOn.IsZero() && m.ExpiresOn.After(start) {
		start = truncateDay(m.ExpiresOn)
	}
	m.ExpiresOn = start.AddDate(0, months, 0)
	m.Status = StatusActive
	return nil
}

// Expire marks an active membership as expired once its end date has passed.
// Returns true if the status changed.
func (m *Member) Expire(today time.Time) bool {
	if m.Status != StatusActive || m.ExpiresOn.IsZero() {
		return false
	}
	if !m.ExpiresOn.Before(truncateDay(today)) {
		return false
	}
	m.Status = StatusExpired
	return true
}

// Suspend blocks the membership regardless of payments.
func (m *Member) Suspend() error {
	if m.Status == StatusSuspended {
		return ErrAlreadySuspended
	}
	m.Status = StatusSuspended
	return nil
}

// Reinstate lifts a suspension. The member returns to active if paid-up
// time remains, otherwise to expired (or pending if never paid).
func (m *Member) Reinstate(today time.Time) error {
	if m.Status != StatusSuspended {
		return ErrNotSuspended
	}
	switch {
	case m.ExpiresOn.IsZero():
		m.Status = StatusPending
	case m.ExpiresOn.Before(truncateDay(today)):
		m.Status = StatusExpired
	default:
		m.Status = StatusActive
	}
	return nil
}

// DaysRemaining returns the whole days left on the membership, or 0.
func (m *Member) DaysRemaining(today time.Time) int {
	if m.ExpiresOn.IsZero() {
		return 0
	}
	d := int(truncateDay(m.ExpiresOn).Sub(truncateDay(today)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// PlanPrice returns the list price in cents for months of plan.
func PlanPrice(plan string, months int) int {
	return PlanMonthlyPriceCents[plan] * months
}

// IsValidPlan reports whether plan is a known membership plan.
func IsValidPlan(plan string) bool {
	_, ok := PlanMonthlyPriceCents[plan]
	return ok
}

func isValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
