package financials

import (
	"context"
	"errors"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Service owns the financial snapshots and reporting reads. Snapshots are
// derived data: SnapshotTx rewrites them whenever an allocation or the
// employee's cost changes.
type Service struct {
	DB             *gorm.DB
	Resolver       *rates.Service
	HoursPerPeriod int
}

func (s *Service) hours() int {
	if s.HoursPerPeriod > 0 {
		return s.HoursPerPeriod
	}
	return DefaultHoursPerPeriod
}

// SnapshotTx recomputes and upserts the financial snapshot for one
// allocation inside the caller's transaction, so a failed write rolls the
// snapshot back with the allocation change.
func (s *Service) SnapshotTx(ctx context.Context, tx *gorm.DB, alloc *domain.Allocation, emp *domain.Employee, proj *domain.Project, asOf time.Time) (*domain.AllocationFinancial, error) {
	var domainID *uuid.UUID
	if proj != nil {
		domainID = proj.DomainID
	}

	resolved, err := s.Resolver.Resolve(ctx, tx, alloc.EmployeeID, domainID, alloc.BillingRate, asOf)
	if err != nil {
		return nil, err
	}
	if resolved.Source == domain.RateSourceNone && !alloc.IsTrainee {
		log.Warn().
			Str("allocation_id", alloc.AllocationID.String()).
			Str("employee_id", alloc.EmployeeID.String()).
			Msg("no rate resolved; financials degrade to zero revenue")
	}

	breakdown := Reconcile(alloc, emp, resolved, s.hours())

	snapshot := domain.AllocationFinancial{
		AllocationID:          alloc.AllocationID,
		RateCardID:            resolved.RateCardID,
		BillingRate:           breakdown.BillingRate,
		CostRate:              breakdown.CostRate,
		BilledHours:           breakdown.BilledHours,
		UtilizedHours:         breakdown.UtilizedHours,
		EstimatedRevenue:      breakdown.EstimatedRevenue,
		EstimatedCost:         breakdown.EstimatedCost,
		GrossMarginPercentage: breakdown.GrossMarginPercentage,
		RateSource:            breakdown.RateSource,
		TotalHoursInPeriod:    breakdown.TotalHoursInPeriod,
	}

	var existing domain.AllocationFinancial
	err = tx.Where("allocation_id = ?", alloc.AllocationID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&snapshot).Error; err != nil {
			return nil, err
		}
		return &snapshot, nil
	case err != nil:
		return nil, err
	default:
		snapshot.FinancialID = existing.FinancialID
		snapshot.CreatedAt = existing.CreatedAt
		if err := tx.Save(&snapshot).Error; err != nil {
			return nil, err
		}
		return &snapshot, nil
	}
}

// RebuildForEmployee recomputes every snapshot of one employee. Called when
// the employee's monthly cost changes.
func (s *Service) RebuildForEmployee(ctx context.Context, employeeID uuid.UUID, asOf time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp domain.Employee
		if err := tx.Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		var allocations []domain.Allocation
		if err := tx.Where("employee_id = ?", employeeID).Find(&allocations).Error; err != nil {
			return err
		}

		for i := range allocations {
			var proj domain.Project
			if err := tx.Where("project_id = ?", allocations[i].ProjectID).First(&proj).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}
			if _, err := s.SnapshotTx(ctx, tx, &allocations[i], &emp, &proj, asOf); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReportRow is one allocation in the financial report. RateSource lets
// consumers tell a missing rate card apart from a zero margin, and Posture
// classifies over-billed vs under-billed staffing.
type ReportRow struct {
	AllocationID          uuid.UUID             `json:"allocation_id"`
	EmployeeID            uuid.UUID             `json:"employee_id"`
	EmployeeName          string                `json:"employee_name"`
	ProjectID             uuid.UUID             `json:"project_id"`
	ProjectName           string                `json:"project_name"`
	AllocationPercentage  int                   `json:"allocation_percentage"`
	InternalPercentage    int                   `json:"internal_allocation_percentage"`
	BillablePercentage    int                   `json:"billable_percentage"`
	IsTrainee             bool                  `json:"is_trainee"`
	BilledHours           int                   `json:"billed_hours"`
	UtilizedHours         int                   `json:"utilized_hours"`
	BillingRate           float64               `json:"billing_rate"`
	CostRate              float64               `json:"cost_rate"`
	EstimatedRevenue      float64               `json:"estimated_revenue"`
	EstimatedCost         float64               `json:"estimated_cost"`
	GrossMarginPercentage float64               `json:"gross_margin_percentage"`
	RateSource            domain.RateSource     `json:"rate_source"`
	Posture               domain.BillingPosture `json:"billing_posture"`
}

// Report returns one row per allocation active on asOf, freshly reconciled
// (consistent-snapshot read, no locks).
func (s *Service) Report(ctx context.Context, asOf time.Time) ([]ReportRow, error) {
	var allocations []domain.Allocation
	err := s.DB.WithContext(ctx).
		Where("start_date <= ?", asOf).
		Where("end_date IS NULL OR end_date >= ?", asOf).
		Order("start_date DESC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return s.buildRows(ctx, allocations, asOf)
}

// EmployeeReport returns rows for all of one employee's allocations.
func (s *Service) EmployeeReport(ctx context.Context, employeeID uuid.UUID, asOf time.Time) ([]ReportRow, error) {
	var emp domain.Employee
	if err := s.DB.WithContext(ctx).Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	var allocations []domain.Allocation
	err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return s.buildRows(ctx, allocations, asOf)
}

func (s *Service) buildRows(ctx context.Context, allocations []domain.Allocation, asOf time.Time) ([]ReportRow, error) {
	rows := make([]ReportRow, 0, len(allocations))
	for i := range allocations {
		alloc := &allocations[i]

		var emp domain.Employee
		if err := s.DB.WithContext(ctx).Where("employee_id = ?", alloc.EmployeeID).First(&emp).Error; err != nil {
			return nil, err
		}
		var proj domain.Project
		if err := s.DB.WithContext(ctx).Where("project_id = ?", alloc.ProjectID).First(&proj).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		resolved, err := s.Resolver.Resolve(ctx, s.DB.WithContext(ctx), alloc.EmployeeID, proj.DomainID, alloc.BillingRate, asOf)
		if err != nil {
			return nil, err
		}
		breakdown := Reconcile(alloc, &emp, resolved, s.hours())

		rows = append(rows, ReportRow{
			AllocationID:          alloc.AllocationID,
			EmployeeID:            alloc.EmployeeID,
			EmployeeName:          emp.FullName(),
			ProjectID:             alloc.ProjectID,
			ProjectName:           proj.ProjectName,
			AllocationPercentage:  alloc.ClientPercentage(),
			InternalPercentage:    alloc.CapacityPercentage(),
			BillablePercentage:    alloc.BillablePercentage,
			IsTrainee:             alloc.IsTrainee,
			BilledHours:           breakdown.BilledHours,
			UtilizedHours:         breakdown.UtilizedHours,
			BillingRate:           breakdown.BillingRate,
			CostRate:              breakdown.CostRate,
			EstimatedRevenue:      breakdown.EstimatedRevenue,
			EstimatedCost:         breakdown.EstimatedCost,
			GrossMarginPercentage: breakdown.GrossMarginPercentage,
			RateSource:            breakdown.RateSource,
			Posture:               breakdown.Posture,
		})
	}
	return rows, nil
}

// Summary aggregates the report into organization-level figures.
type Summary struct {
	Allocations           int     `json:"allocations"`
	TotalRevenue          float64 `json:"total_revenue"`
	TotalCost             float64 `json:"total_cost"`
	BlendedMarginPct      float64 `json:"blended_margin_percentage"`
	OverBilledCount       int     `json:"over_billed_count"`
	UnderBilledCount      int     `json:"under_billed_count"`
	MissingRateCount      int     `json:"missing_rate_count"`
	TraineeCount          int     `json:"trainee_count"`
	HoursPerPeriodApplied int     `json:"hours_per_period"`
}

// Summarize builds the org summary over allocations active on asOf.
func (s *Service) Summarize(ctx context.Context, asOf time.Time) (Summary, error) {
	rows, err := s.Report(ctx, asOf)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Allocations: len(rows), HoursPerPeriodApplied: s.hours()}
	revenue := decimal.Zero
	cost := decimal.Zero
	for _, row := range rows {
		revenue = revenue.Add(decimal.NewFromFloat(row.EstimatedRevenue))
		cost = cost.Add(decimal.NewFromFloat(row.EstimatedCost))
		switch row.Posture {
		case domain.PostureOverBilled:
			sum.OverBilledCount++
		case domain.PostureUnderBilled:
			sum.UnderBilledCount++
		}
		if row.RateSource == domain.RateSourceNone {
			sum.MissingRateCount++
		}
		if row.IsTrainee {
			sum.TraineeCount++
		}
	}

	sum.TotalRevenue = revenue.Round(2).InexactFloat64()
	sum.TotalCost = cost.Round(2).InexactFloat64()
	if revenue.IsPositive() {
		sum.BlendedMarginPct = revenue.Sub(cost).Div(revenue).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return sum, nil
}
