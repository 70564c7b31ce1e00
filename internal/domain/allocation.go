package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarFuture stands in for a missing end date when comparing ranges.
// An open-ended allocation overlaps everything after its start.
var FarFuture = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// Allocation commits a fraction of an employee's capacity to a project over
// a date range. The three percentages are independent:
//
//	AllocationPercentage         what is reported to the client
//	InternalAllocationPercentage what is actually consumed internally
//	BillablePercentage           the billable fraction of the allocation
//
// AllocationPercentage and InternalAllocationPercentage are nullable because
// rows written before the percentage split carry only the legacy Utilization
// column; CapacityPercentage resolves the fallback chain. The write path
// always fills both.
type Allocation struct {
	AllocationID                 uuid.UUID  `gorm:"column:allocation_id;type:uuid;primaryKey" json:"allocation_id"`
	EmployeeID                   uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	ProjectID                    uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	StartDate                    time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate                      *time.Time `gorm:"column:end_date" json:"end_date"`
	AllocationPercentage         *int       `gorm:"column:allocation_percentage" json:"allocation_percentage"`
	InternalAllocationPercentage *int       `gorm:"column:internal_allocation_percentage" json:"internal_allocation_percentage"`
	BillablePercentage           int        `gorm:"column:billable_percentage;not null;default:100" json:"billable_percentage"`
	BillingRate                  *float64   `gorm:"column:billing_rate;type:decimal(18,2)" json:"billing_rate"`
	IsTrainee                    bool       `gorm:"column:is_trainee;not null;default:false;index" json:"is_trainee"`
	MentoringPrimaryEmpID        *uuid.UUID `gorm:"column:mentoring_primary_emp_id;type:uuid;index" json:"mentoring_primary_emp_id"`
	RateCardID                   *uuid.UUID `gorm:"column:rate_card_id;type:uuid" json:"rate_card_id"`
	// Utilization is the legacy single-percentage column, kept so pre-split
	// rows keep validating until backfilled.
	Utilization *int      `gorm:"column:utilization" json:"utilization,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Allocation) TableName() string {
	return "allocations"
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	if a.AllocationID == uuid.Nil {
		a.AllocationID = uuid.New()
	}
	return nil
}

// EffectiveEnd returns the end date, substituting FarFuture for open-ended rows.
func (a *Allocation) EffectiveEnd() time.Time {
	if a.EndDate == nil {
		return FarFuture
	}
	return *a.EndDate
}

// ActiveOn reports whether the allocation covers the given day.
func (a *Allocation) ActiveOn(day time.Time) bool {
	return !a.StartDate.After(day) && !a.EffectiveEnd().Before(day)
}

// CapacityPercentage is the fraction this row contributes to an employee's
// committed capacity. Fallback chain for legacy rows:
// internal% -> allocation% -> utilization% -> 100.
func (a *Allocation) CapacityPercentage() int {
	if a.InternalAllocationPercentage != nil {
		return *a.InternalAllocationPercentage
	}
	if a.AllocationPercentage != nil {
		return *a.AllocationPercentage
	}
	if a.Utilization != nil {
		return *a.Utilization
	}
	return 100
}

// ClientPercentage is the capacity fraction reported to the client.
func (a *Allocation) ClientPercentage() int {
	if a.AllocationPercentage != nil {
		return *a.AllocationPercentage
	}
	if a.Utilization != nil {
		return *a.Utilization
	}
	return 100
}

// Overlaps reports whether the allocation's range intersects [start, end].
// A nil end means open-ended. Two ranges [s1,e1], [s2,e2] overlap iff
// s1 <= e2 && s2 <= e1.
func (a *Allocation) Overlaps(start time.Time, end *time.Time) bool {
	otherEnd := FarFuture
	if end != nil {
		otherEnd = *end
	}
	return !a.StartDate.After(otherEnd) && !start.After(a.EffectiveEnd())
}

// IsPureShadow reports whether this is a trainee row consuming no real
// capacity. Pure shadows never count toward committed capacity or toward
// the ALLOCATED status.
func (a *Allocation) IsPureShadow() bool {
	return a.IsTrainee && a.CapacityPercentage() == 0
}

// BillingPosture compares what is billed against what is internally staffed.
func (a *Allocation) Posture() BillingPosture {
	internal := a.CapacityPercentage()
	client := a.ClientPercentage()
	switch {
	case internal < client:
		return PostureOverBilled
	case internal > client:
		return PostureUnderBilled
	default:
		return PostureBalanced
	}
}
