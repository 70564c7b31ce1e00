package financials

import (
	"github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultHoursPerPeriod is one person-month of working hours.
const DefaultHoursPerPeriod = 160

// costRateHoursBase converts monthly cost-to-company into an hourly cost
// rate. Fixed at 160 regardless of the reporting period length.
const costRateHoursBase = 160

// Breakdown is the computed financial picture of one allocation over one
// reporting period. All money fields are rounded to 2 places.
type Breakdown struct {
	BilledHours           int                   `json:"billed_hours"`
	UtilizedHours         int                   `json:"utilized_hours"`
	BillingRate           float64               `json:"billing_rate"`
	CostRate              float64               `json:"cost_rate"`
	EstimatedRevenue      float64               `json:"estimated_revenue"`
	EstimatedCost         float64               `json:"estimated_cost"`
	GrossMarginPercentage float64               `json:"gross_margin_percentage"`
	RateSource            domain.RateSource     `json:"rate_source"`
	Posture               domain.BillingPosture `json:"billing_posture"`
	TotalHoursInPeriod    int                   `json:"total_hours_in_period"`
}

// Reconcile turns an allocation's percentages and the resolved rate into
// billed/cost hours, revenue, cost and margin for a reporting period.
//
//	billedHours = floor(totalHours * allocation% * billable% / 10000)
//	costHours   = floor(totalHours * internal% / 100)
//	costRate    = ctc_monthly / 160
//	revenue     = rate * billedHours
//	cost        = costRate * costHours
//	margin%     = revenue > 0 ? (revenue - cost) / revenue * 100 : 0
//
// Trainee rows never bill: billedHours and revenue are forced to zero while
// cost still accrues. RateSource is carried through so a zero revenue caused
// by a missing rate card stays distinguishable from a genuinely zero margin.
func Reconcile(alloc *domain.Allocation, emp *domain.Employee, rate rates.ResolvedRate, totalHours int) Breakdown {
	if totalHours <= 0 {
		totalHours = DefaultHoursPerPeriod
	}

	internalPct := alloc.CapacityPercentage()
	clientPct := alloc.ClientPercentage()

	billedHours := (totalHours * clientPct * alloc.BillablePercentage) / 10000
	costHours := (totalHours * internalPct) / 100
	if alloc.IsTrainee {
		billedHours = 0
	}

	costRate := decimal.NewFromFloat(emp.CTCMonthly).
		Div(decimal.NewFromInt(costRateHoursBase))
	cost := costRate.Mul(decimal.NewFromInt(int64(costHours)))

	billingRate := decimal.NewFromFloat(rate.Rate)
	revenue := billingRate.Mul(decimal.NewFromInt(int64(billedHours)))
	if alloc.IsTrainee {
		revenue = decimal.Zero
	}

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = revenue.Sub(cost).
			Div(revenue).
			Mul(decimal.NewFromInt(100))
	}

	return Breakdown{
		BilledHours:           billedHours,
		UtilizedHours:         costHours,
		BillingRate:           rate.Rate,
		CostRate:              costRate.Round(2).InexactFloat64(),
		EstimatedRevenue:      revenue.Round(2).InexactFloat64(),
		EstimatedCost:         cost.Round(2).InexactFloat64(),
		GrossMarginPercentage: margin.Round(2).InexactFloat64(),
		RateSource:            rate.Source,
		Posture:               alloc.Posture(),
		TotalHoursInPeriod:    totalHours,
	}
}
