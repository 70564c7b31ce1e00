package allocations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/status"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/locks"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns allocation writes. Every create/update/delete validates and
// persists as one atomic unit under the employee's lock: two concurrent
// writes can otherwise both read a sub-100% total and jointly overstaff the
// employee.
type Service struct {
	DB         *gorm.DB
	Locks      *locks.Keyed
	Status     *status.Service
	Financials *financials.Service
	// Today overrides the clock in tests.
	Today func() time.Time
}

func (s *Service) today() time.Time {
	if s.Today != nil {
		return s.Today()
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateInput is an allocation write request. Omitted percentages take the
// documented defaults: allocation 100, internal = allocation, billable 100.
type CreateInput struct {
	EmployeeID                   uuid.UUID
	ProjectID                    uuid.UUID
	StartDate                    time.Time
	EndDate                      *time.Time
	AllocationPercentage         *int
	InternalAllocationPercentage *int
	BillablePercentage           *int
	BillingRate                  *float64
	IsTrainee                    bool
	MentoringPrimaryEmpID        *uuid.UUID
}

// Create validates and persists a new allocation, recomputes the financial
// snapshot, records the audit event and resyncs the employee's status — all
// in one transaction under the employee's lock.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Allocation, error) {
	allocationPct := 100
	if in.AllocationPercentage != nil {
		allocationPct = *in.AllocationPercentage
	}
	internalPct := allocationPct
	if in.InternalAllocationPercentage != nil {
		internalPct = *in.InternalAllocationPercentage
	}
	billablePct := 100
	if in.BillablePercentage != nil {
		billablePct = *in.BillablePercentage
	}

	alloc := domain.Allocation{
		EmployeeID:                   in.EmployeeID,
		ProjectID:                    in.ProjectID,
		StartDate:                    in.StartDate,
		EndDate:                      in.EndDate,
		AllocationPercentage:         &allocationPct,
		InternalAllocationPercentage: &internalPct,
		BillablePercentage:           billablePct,
		BillingRate:                  in.BillingRate,
		IsTrainee:                    in.IsTrainee,
		MentoringPrimaryEmpID:        in.MentoringPrimaryEmpID,
	}

	s.Locks.Lock(in.EmployeeID)
	defer s.Locks.Unlock(in.EmployeeID)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emp, proj, err := s.loadRefs(tx, in.EmployeeID, in.ProjectID)
		if err != nil {
			return err
		}
		if err := s.gate(ctx, tx, &alloc, nil); err != nil {
			return err
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return err
		}
		if snap, err := s.Financials.SnapshotTx(ctx, tx, &alloc, emp, proj, s.today()); err != nil {
			return err
		} else if snap.RateCardID != nil {
			alloc.RateCardID = snap.RateCardID
			if err := tx.Model(&domain.Allocation{}).
				Where("allocation_id = ?", alloc.AllocationID).
				Update("rate_card_id", snap.RateCardID).Error; err != nil {
				return err
			}
		}
		if err := s.recordEvent(tx, &alloc, domain.EventCreated); err != nil {
			return err
		}
		_, err = s.Status.Sync(tx, emp, s.today())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// UpdateInput carries the fields a re-staffing can change. Nil means "keep".
// ClearEndDate reopens the allocation.
type UpdateInput struct {
	StartDate                    *time.Time
	EndDate                      *time.Time
	ClearEndDate                 bool
	AllocationPercentage         *int
	InternalAllocationPercentage *int
	BillablePercentage           *int
	BillingRate                  *float64
	IsTrainee                    *bool
	MentoringPrimaryEmpID        *uuid.UUID
}

// Update applies an in-place change, excluding the row itself from the
// overlap sum and re-running every write gate.
func (s *Service) Update(ctx context.Context, allocationID uuid.UUID, in UpdateInput) (*domain.Allocation, error) {
	var alloc domain.Allocation
	if err := s.DB.WithContext(ctx).Where("allocation_id = ?", allocationID).First(&alloc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}

	s.Locks.Lock(alloc.EmployeeID)
	defer s.Locks.Unlock(alloc.EmployeeID)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reload under the lock; the pre-lock read only located the employee.
		if err := tx.Where("allocation_id = ?", allocationID).First(&alloc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAllocationNotFound
			}
			return err
		}

		if in.StartDate != nil {
			alloc.StartDate = *in.StartDate
		}
		if in.ClearEndDate {
			alloc.EndDate = nil
		} else if in.EndDate != nil {
			alloc.EndDate = in.EndDate
		}
		if in.AllocationPercentage != nil {
			alloc.AllocationPercentage = in.AllocationPercentage
		}
		if in.InternalAllocationPercentage != nil {
			alloc.InternalAllocationPercentage = in.InternalAllocationPercentage
		}
		if in.BillablePercentage != nil {
			alloc.BillablePercentage = *in.BillablePercentage
		}
		if in.BillingRate != nil {
			alloc.BillingRate = in.BillingRate
		}
		if in.IsTrainee != nil {
			alloc.IsTrainee = *in.IsTrainee
		}
		if in.MentoringPrimaryEmpID != nil {
			alloc.MentoringPrimaryEmpID = in.MentoringPrimaryEmpID
		}

		emp, proj, err := s.loadRefs(tx, alloc.EmployeeID, alloc.ProjectID)
		if err != nil {
			return err
		}
		if err := s.gate(ctx, tx, &alloc, &alloc.AllocationID); err != nil {
			return err
		}
		if err := tx.Save(&alloc).Error; err != nil {
			return err
		}
		if _, err := s.Financials.SnapshotTx(ctx, tx, &alloc, emp, proj, s.today()); err != nil {
			return err
		}
		if err := s.recordEvent(tx, &alloc, domain.EventUpdated); err != nil {
			return err
		}
		_, err = s.Status.Sync(tx, emp, s.today())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// Delete removes an allocation (team member taken off a project). The
// financial snapshot cascades; the audit trail keeps the DELETED event.
func (s *Service) Delete(ctx context.Context, allocationID uuid.UUID) error {
	var alloc domain.Allocation
	if err := s.DB.WithContext(ctx).Where("allocation_id = ?", allocationID).First(&alloc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAllocationNotFound
		}
		return err
	}

	s.Locks.Lock(alloc.EmployeeID)
	defer s.Locks.Unlock(alloc.EmployeeID)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp domain.Employee
		if err := tx.Where("employee_id = ?", alloc.EmployeeID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		if err := tx.Where("allocation_id = ?", allocationID).Delete(&domain.AllocationFinancial{}).Error; err != nil {
			return err
		}
		if err := tx.Where("allocation_id = ?", allocationID).Delete(&domain.Allocation{}).Error; err != nil {
			return err
		}
		if err := s.recordEvent(tx, &alloc, domain.EventDeleted); err != nil {
			return err
		}
		_, err := s.Status.Sync(tx, &emp, s.today())
		return err
	})
}

// Get returns one allocation.
func (s *Service) Get(ctx context.Context, allocationID uuid.UUID) (*domain.Allocation, error) {
	var alloc domain.Allocation
	if err := s.DB.WithContext(ctx).Where("allocation_id = ?", allocationID).First(&alloc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllocationNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// ListForEmployee returns an employee's allocations, newest first.
func (s *Service) ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]domain.Allocation, error) {
	var allocations []domain.Allocation
	err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&allocations).Error
	return allocations, err
}

// DryRun runs the overlap validation without writing anything, for
// staffing-preview callers.
func (s *Service) DryRun(ctx context.Context, employeeID uuid.UUID, candidatePct int, start time.Time, end *time.Time, excludeID *uuid.UUID) (Verdict, error) {
	if candidatePct < 0 || candidatePct > 100 {
		return Verdict{}, &PercentageRangeError{Field: "internal_allocation_percentage", Value: candidatePct}
	}
	return ValidateCapacity(s.DB.WithContext(ctx), employeeID, candidatePct, start, end, excludeID)
}

// gate runs every write-time check in order: percentage ranges, trainee
// rules (collected, not short-circuited), then the capacity validation.
func (s *Service) gate(ctx context.Context, tx *gorm.DB, alloc *domain.Allocation, excludeID *uuid.UUID) error {
	if err := checkRanges(alloc); err != nil {
		return err
	}

	violations := CheckTrainee(alloc)
	mentorViolations, err := CheckMentor(tx, alloc)
	if err != nil {
		return err
	}
	violations = append(violations, mentorViolations...)
	if len(violations) > 0 {
		return &TraineeViolationError{Violations: violations}
	}

	verdict, err := ValidateCapacity(tx, alloc.EmployeeID, alloc.CapacityPercentage(), alloc.StartDate, alloc.EndDate, excludeID)
	if err != nil {
		return err
	}
	if !verdict.IsValid {
		log.Warn().
			Str("employee_id", alloc.EmployeeID.String()).
			Int("current_total", verdict.CurrentTotal).
			Int("would_be_total", verdict.WouldBeTotal).
			Msg("allocation rejected: capacity exceeded")
		return &OverAllocationError{
			EmployeeName: employeeDisplayName(tx, alloc.EmployeeID),
			CurrentTotal: verdict.CurrentTotal,
			WouldBeTotal: verdict.WouldBeTotal,
		}
	}
	return nil
}

func checkRanges(alloc *domain.Allocation) error {
	checks := []struct {
		field string
		value int
	}{
		{"allocation_percentage", alloc.ClientPercentage()},
		{"internal_allocation_percentage", alloc.CapacityPercentage()},
		{"billable_percentage", alloc.BillablePercentage},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 100 {
			return &PercentageRangeError{Field: c.field, Value: c.value}
		}
	}
	return nil
}

func (s *Service) loadRefs(tx *gorm.DB, employeeID, projectID uuid.UUID) (*domain.Employee, *domain.Project, error) {
	var emp domain.Employee
	if err := tx.Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEmployeeNotFound
		}
		return nil, nil, err
	}
	var proj domain.Project
	if err := tx.Where("project_id = ?", projectID).First(&proj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, err
	}
	return &emp, &proj, nil
}

func (s *Service) recordEvent(tx *gorm.DB, alloc *domain.Allocation, eventType domain.EventType) error {
	payload, err := json.Marshal(map[string]interface{}{
		"start_date":                     alloc.StartDate.Format("2006-01-02"),
		"end_date":                       formatDate(alloc.EndDate),
		"allocation_percentage":          alloc.ClientPercentage(),
		"internal_allocation_percentage": alloc.CapacityPercentage(),
		"billable_percentage":            alloc.BillablePercentage,
		"is_trainee":                     alloc.IsTrainee,
	})
	if err != nil {
		return err
	}
	return tx.Create(&domain.AllocationEvent{
		AllocationID: alloc.AllocationID,
		EmployeeID:   alloc.EmployeeID,
		EventType:    eventType,
		EventData:    datatypes.JSON(payload),
	}).Error
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
