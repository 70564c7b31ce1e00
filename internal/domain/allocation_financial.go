package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllocationFinancial is the derived financial snapshot for one allocation
// and one reporting period. It is recomputable at any time: the reconciler
// rewrites it whenever the allocation or the employee's cost changes.
// RateSource records where BillingRate came from so a zero caused by a
// missing rate card is distinguishable from a genuinely zero margin.
type AllocationFinancial struct {
	FinancialID           uuid.UUID  `gorm:"column:financial_id;type:uuid;primaryKey" json:"financial_id"`
	AllocationID          uuid.UUID  `gorm:"column:allocation_id;type:uuid;not null;uniqueIndex" json:"allocation_id"`
	RateCardID            *uuid.UUID `gorm:"column:rate_card_id;type:uuid" json:"rate_card_id"`
	BillingRate           float64    `gorm:"column:billing_rate;type:decimal(18,2);not null;default:0" json:"billing_rate"`
	CostRate              float64    `gorm:"column:cost_rate;type:decimal(18,2);not null;default:0" json:"cost_rate"`
	BilledHours           int        `gorm:"column:billed_hours;not null;default:0" json:"billed_hours"`
	UtilizedHours         int        `gorm:"column:utilized_hours;not null;default:0" json:"utilized_hours"`
	EstimatedRevenue      float64    `gorm:"column:estimated_revenue;type:decimal(18,2);not null;default:0" json:"estimated_revenue"`
	EstimatedCost         float64    `gorm:"column:estimated_cost;type:decimal(18,2);not null;default:0" json:"estimated_cost"`
	GrossMarginPercentage float64    `gorm:"column:gross_margin_percentage;type:decimal(8,2);not null;default:0" json:"gross_margin_percentage"`
	RateSource            RateSource `gorm:"column:rate_source;type:varchar(20);not null;default:NONE" json:"rate_source"`
	TotalHoursInPeriod    int        `gorm:"column:total_hours_in_period;not null;default:0" json:"total_hours_in_period"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (AllocationFinancial) TableName() string {
	return "allocation_financials"
}

func (f *AllocationFinancial) BeforeCreate(tx *gorm.DB) error {
	if f.FinancialID == uuid.Nil {
		f.FinancialID = uuid.New()
	}
	return nil
}
