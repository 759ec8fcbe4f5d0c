package web

import (
	"net/http"
	"net/url"
	"strconv"

	memberStore "gymhub/internal/adapters/storage/member"
	"gymhub/internal/application/listutil"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
	"gymhub/internal/domain/member"
	"gymhub/internal/domain/payment"
)

// revenueMonths is how far back the ledger and revenue report look by default.
const revenueMonths = 2

func renderPaymentLedger(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	query := projections.GetPaymentLedgerQuery{
		Range:    listutil.ParseDateRange(q, timeNow(), revenueMonths),
		MemberID: q.Get("member"),
		Method:   q.Get("method"),
		Page:     page,
	}
	ledger, err := projections.QueryGetPaymentLedger(r.Context(), query, projections.GetPaymentLedgerDeps{
		PaymentStore: stores.PaymentStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, ledger)
		return
	}

	// Member picker for the record form; active and lapsed members both pay.
	members, err := stores.MemberStore.List(r.Context(), memberStore.ListFilter{Limit: 500, Sort: "name"})
	if err != nil {
		internalError(w, err)
		return
	}
	data := map[string]any{
		"Ledger":  ledger,
		"Query":   query,
		"Members": members,
		"Methods": payment.Methods,
		"Plans":   member.ValidPlans,
		"Flash":   flash(r),
		"Form": orchestrators.RecordPaymentInput{
			MemberID:     q.Get("member"),
			PeriodMonths: 1,
			PaidOn:       timeNow().Format(member.DateLayout),
		},
	}
	for k, v := range extra {
		data[k] = v
	}
	renderTemplate(w, r, status, "admin_payments.html", data)
}

// handlePaymentLedger handles GET /admin/payments
func handlePaymentLedger(w http.ResponseWriter, r *http.Request) {
	renderPaymentLedger(w, r, http.StatusOK, nil)
}

// handleRecordPayment handles POST /admin/payments
func handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.RecordPaymentInput
	if !bindInput(w, r, &input, func(f formReader) {
		input.MemberID = f.str("MemberID")
		input.Amount = f.str("Amount")
		input.Method = f.str("Method")
		input.Plan = f.str("Plan")
		input.PeriodMonths = f.num("PeriodMonths")
		input.PaidOn = f.str("PaidOn")
		input.Reference = f.str("Reference")
	}) {
		return
	}
	input.RecordedBy = actor(r).AccountID

	result, err := orchestrators.ExecuteRecordPayment(r.Context(), input, orchestrators.RecordPaymentDeps{
		PaymentStore: stores.PaymentStore,
		Outbox:       stores.OutboxStore,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, r, err, func(status int, msgs []string) {
			renderPaymentLedger(w, r, status, map[string]any{"Form": input, "Errors": msgs})
		})
		return
	}
	invalidateDashboard(r)

	msg := "Payment recorded, " + result.Member.Name + " paid through " + result.Member.ExpiresOn.Format("2 Jan 2006")
	done(w, r, "/admin/payments?msg="+url.QueryEscape(msg), http.StatusCreated, result)
}

// handleRevenueReport handles GET /admin/reports/revenue
func handleRevenueReport(w http.ResponseWriter, r *http.Request) {
	query := projections.GetRevenueReportQuery{
		Range: listutil.ParseDateRange(r.URL.Query(), timeNow(), revenueMonths),
	}
	rep, err := projections.QueryGetRevenueReport(r.Context(), query, projections.GetRevenueReportDeps{
		ReportStore: stores.ReportStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	renderTemplate(w, r, http.StatusOK, "admin_revenue.html", map[string]any{"Report": rep})
}
