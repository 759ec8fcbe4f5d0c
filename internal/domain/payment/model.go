package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/domain/member"
)

// Field limits
const (
	MinAmountCents     = 1
	MaxAmountCents     = 10000000
	MinPeriodMonths    = 1
	MaxPeriodMonths    = 12
	MaxReferenceLength = 64
)

// Method constants
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
)

// Methods lists the accepted payment methods in display order.
var Methods = []string{MethodCash, MethodCard, MethodBankTransfer}

// Domain errors
var (
	ErrNotFound          = errors.New("payment not found")
	ErrEmptyMember       = errors.New("member is required")
	ErrInvalidAmount     = errors.New("amount must be between 0.01 and 100000.00")
	ErrInvalidMethod     = errors.New("method must be 'cash', 'card', or 'bank_transfer'")
	ErrInvalidPlan       = errors.New("plan must be 'basic', 'standard', or 'premium'")
	ErrInvalidPeriod     = errors.New("period must be between 1 and 12 months")
	ErrReferenceTooLong  = errors.New("reference cannot exceed 64 characters")
	ErrBelowPlanPrice    = errors.New("amount below plan price")
	ErrEmptyPaidAt       = errors.New("payment date is required")
	ErrInvalidAmountText = errors.New("amount must be a number with at most two decimals")
)

// Payment is a recorded membership payment.
type Payment struct {
	ID           string
	MemberID     string
	AmountCents  int
	Method       string
	Plan         string
	PeriodMonths int
	PaidAt       time.Time
	Reference    string
	RecordedBy   string
}

// Validate checks if the Payment has valid data, including the plan price floor.
// PRE: Payment struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if p.MemberID == "" {
		return ErrEmptyMember
	}
	if p.AmountCents < MinAmountCents || p.AmountCents > MaxAmountCents {
		return ErrInvalidAmount
	}
	if !isValidMethod(p.Method) {
		return ErrInvalidMethod
	}
	if !member.IsValidPlan(p.Plan) {
		return ErrInvalidPlan
	}
	if p.PeriodMonths < MinPeriodMonths || p.PeriodMonths > MaxPeriodMonths {
		return ErrInvalidPeriod
	}
	if len(p.Reference) > MaxReferenceLength {
		return ErrReferenceTooLong
	}
	if p.PaidAt.IsZero() {
		return ErrEmptyPaidAt
	}
	if p.AmountCents < p.ExpectedCents() {
		return ErrBelowPlanPrice
	}
	return nil
}

// ExpectedCents returns the list price for the plan over the period.
func (p *Payment) ExpectedCents() int {
	return member.PlanPrice(p.Plan, p.PeriodMonths)
}

// ParseCents converts a decimal amount such as "49.90" to cents.
func ParseCents(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmountText
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidAmountText
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if !allDigits(whole) || !allDigits(frac) || len(whole) > 9 {
		return 0, ErrInvalidAmountText
	}
	w, _ := strconv.Atoi(whole)
	f, _ := strconv.Atoi(frac)
	return w*100 + f, nil
}

// FormatCents renders cents as a decimal string, e.g. 4990 -> "49.90".
func FormatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isValidMethod(m string) bool {
	for _, v := range Methods {
		if v == m {
			return true
		}
	}
	return false
}
