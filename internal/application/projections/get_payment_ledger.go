package projections

import (
	"context"

	paymentstore "gymhub/internal/adapters/storage/payment"
	"gymhub/internal/application/listutil"
)

// LedgerPageSize is the number of payments per ledger page.
const LedgerPageSize = 50

// GetPaymentLedgerQuery carries ledger filters.
type GetPaymentLedgerQuery struct {
	Range    listutil.DateRange
	MemberID string
	Method   string
	Page     int
}

// GetPaymentLedgerDeps holds dependencies for the payment ledger.
type GetPaymentLedgerDeps struct {
	PaymentStore PaymentStore
}

// PaymentLedger is one page of payments with the page total.
type PaymentLedger struct {
	Rows       []paymentstore.PaymentRow
	TotalCents int // sum of Rows
	Page       int
	HasMore    bool
}

// QueryGetPaymentLedger lists recorded payments newest first.
// POST: HasMore is set when a further page exists
func QueryGetPaymentLedger(ctx context.Context, query GetPaymentLedgerQuery, deps GetPaymentLedgerDeps) (PaymentLedger, error) {
	page := max(query.Page, 1)
	rows, err := deps.PaymentStore.List(ctx, paymentstore.ListFilter{
		From:     query.Range.From,
		To:       query.Range.To,
		MemberID: query.MemberID,
		Method:   query.Method,
		Limit:    LedgerPageSize + 1,
		Offset:   (page - 1) * LedgerPageSize,
	})
	if err != nil {
		return PaymentLedger{}, err
	}

	ledger := PaymentLedger{Page: page}
	if len(rows) > LedgerPageSize {
		ledger.HasMore = true
		rows = rows[:LedgerPageSize]
	}
	ledger.Rows = rows
	for _, r := range rows {
		ledger.TotalCents += r.AmountCents
	}
	return ledger, nil
}
