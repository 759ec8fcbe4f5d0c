package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymhub/internal/application/validation"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/payment"
)

// PaymentStoreForRecord defines the store interface needed by RecordPayment.
type PaymentStoreForRecord interface {
	RecordWithMembership(ctx context.Context, p payment.Payment, update func(*member.Member) error) (member.Member, error)
}

// RecordPaymentInput carries the admin payment form.
type RecordPaymentInput struct {
	MemberID     string `validate:"required" label:"Member"`
	Amount       string `validate:"required" label:"Amount"` // decimal, e.g. "150.00"
	Method       string `validate:"required,oneof=cash card bank_transfer" label:"Method"`
	Plan         string `validate:"required,oneof=basic standard premium" label:"Plan"`
	PeriodMonths int    `validate:"min=1,max=12" label:"Period"`
	PaidOn       string `validate:"omitempty,datetime=2006-01-02" label:"Payment date"` // defaults to today
	Reference    string `validate:"max=64" label:"Reference"`
	RecordedBy   string // admin account ID
}

// RecordPaymentResult reports the stored payment and the new membership end.
type RecordPaymentResult struct {
	PaymentID string
	Member    member.Member
}

// RecordPaymentDeps holds dependencies for RecordPayment.
type RecordPaymentDeps struct {
	PaymentStore PaymentStoreForRecord
	Outbox       OutboxWriter
	GenerateID   func() string
	Now          func() time.Time
}

var ErrPaidInFuture = errors.New("payment date cannot be in the future")

// ExecuteRecordPayment records a membership payment and extends the membership.
// PRE: caller is admin
// POST: Payment row and member update committed together; receipt email queued
// INVARIANT: Amount is never below plan price × months
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps RecordPaymentDeps) (RecordPaymentResult, error) {
	input.Amount = strings.TrimSpace(input.Amount)
	input.Reference = strings.TrimSpace(input.Reference)
	input.PaidOn = strings.TrimSpace(input.PaidOn)
	errs := &validation.Errors{}
	validation.CheckStruct(errs, input)
	if err := errs.Err(); err != nil {
		return RecordPaymentResult{}, err
	}

	now := clock(deps.Now)
	paidAt := now
	if input.PaidOn != "" {
		day, _ := time.Parse(member.DateLayout, input.PaidOn)
		if day.After(now) {
			return RecordPaymentResult{}, validation.Wrap(ErrPaidInFuture)
		}
		if day.Format(member.DateLayout) != now.Format(member.DateLayout) {
			paidAt = day
		}
	}

	cents, err := payment.ParseCents(input.Amount)
	if err != nil {
		return RecordPaymentResult{}, validation.Wrap(err)
	}

	p := payment.Payment{
		ID:           newID(deps.GenerateID),
		MemberID:     input.MemberID,
		AmountCents:  cents,
		Method:       input.Method,
		Plan:         input.Plan,
		PeriodMonths: input.PeriodMonths,
		PaidAt:       paidAt,
		Reference:    input.Reference,
		RecordedBy:   input.RecordedBy,
	}
	if err := p.Validate(); err != nil {
		if errors.Is(err, payment.ErrBelowPlanPrice) {
			return RecordPaymentResult{}, validation.Wrap(fmt.Errorf("%w: %s × %d month(s) is %s",
				err, p.Plan, p.PeriodMonths, payment.FormatCents(p.ExpectedCents())))
		}
		return RecordPaymentResult{}, validation.Wrap(err)
	}

	updated, err := deps.PaymentStore.RecordWithMembership(ctx, p, func(m *member.Member) error {
		m.Plan = p.Plan
		// The period runs from today even when the payment is backdated;
		// PaidAt only dates the ledger row.
		return m.ExtendMembership(p.PeriodMonths, now)
	})
	if err != nil {
		if errors.Is(err, member.ErrSuspended) {
			return RecordPaymentResult{}, validation.Wrap(err)
		}
		return RecordPaymentResult{}, fmt.Errorf("record payment: %w", err)
	}

	slog.Info("payment_recorded",
		"payment_id", p.ID,
		"member_id", p.MemberID,
		"amount_cents", p.AmountCents,
		"method", p.Method,
		"expires_on", updated.ExpiresOn.Format(member.DateLayout),
	)
	_ = enqueueEmail(ctx, deps.Outbox, newID(deps.GenerateID), paymentReceiptEmail(updated, p), now)

	return RecordPaymentResult{PaymentID: p.ID, Member: updated}, nil
}
