package projections

import (
	"context"
	"fmt"

	"gymhub/internal/adapters/storage/report"
	"gymhub/internal/application/listutil"
)

// GetRevenueReportQuery carries the report period.
type GetRevenueReportQuery struct {
	Range listutil.DateRange
}

// GetRevenueReportDeps holds dependencies for the revenue report.
type GetRevenueReportDeps struct {
	ReportStore ReportStore
}

// RevenueReport totals payments for a period by month, method and plan.
type RevenueReport struct {
	Range         listutil.DateRange
	ByMonth       []report.MonthTotal
	ByMethod      []report.MethodTotal
	ByPlan        []report.PlanTotal
	TrainerLoads  []report.TrainerLoad
	TotalCents    int
	TotalPayments int
}

// QueryGetRevenueReport aggregates payments in [Range.From, Range.To).
// PRE: Range.From < Range.To
// POST: TotalCents equals the sum of ByMonth
func QueryGetRevenueReport(ctx context.Context, query GetRevenueReportQuery, deps GetRevenueReportDeps) (RevenueReport, error) {
	from, to := query.Range.From, query.Range.To
	r := RevenueReport{Range: query.Range}

	var err error
	if r.ByMonth, err = deps.ReportStore.RevenueByMonth(ctx, from, to); err != nil {
		return RevenueReport{}, fmt.Errorf("revenue by month: %w", err)
	}
	if r.ByMethod, err = deps.ReportStore.RevenueByMethod(ctx, from, to); err != nil {
		return RevenueReport{}, fmt.Errorf("revenue by method: %w", err)
	}
	if r.ByPlan, err = deps.ReportStore.RevenueByPlan(ctx, from, to); err != nil {
		return RevenueReport{}, fmt.Errorf("revenue by plan: %w", err)
	}
	if r.TrainerLoads, err = deps.ReportStore.TrainerLoads(ctx, from, to); err != nil {
		return RevenueReport{}, fmt.Errorf("trainer loads: %w", err)
	}
	for _, m := range r.ByMonth {
		r.TotalCents += m.TotalCents
		r.TotalPayments += m.Payments
	}
	return r, nil
}
