package status

import (
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service derives an employee's availability state from their allocations.
// The stored Employee.Status is only a cache of this derivation, except for
// NOTICE_PERIOD which an explicit HR action controls.
type Service struct {
	DB *gorm.DB
}

// Derive computes the availability state as of today.
//
// NOTICE_PERIOD is sticky: once stored it outranks anything the allocations
// say, until HR clears it. Otherwise the employee is ALLOCATED when at least
// one active allocation consumes real capacity; pure trainee shadows (0%
// capacity) do not count. No real active allocation means BENCH.
func (s *Service) Derive(tx *gorm.DB, emp *domain.Employee, today time.Time) (domain.EmployeeStatus, error) {
	if emp.Status == domain.StatusNoticePeriod {
		return domain.StatusNoticePeriod, nil
	}

	active, err := activeAllocations(tx, emp.EmployeeID, today)
	if err != nil {
		return "", err
	}

	for i := range active {
		if active[i].IsPureShadow() {
			continue
		}
		return domain.StatusAllocated, nil
	}
	return domain.StatusBench, nil
}

// Sync recomputes the status and writes it back only when it differs from
// the stored value. Returns whether a change occurred; calling it again with
// no intervening data change reports false.
func (s *Service) Sync(tx *gorm.DB, emp *domain.Employee, today time.Time) (bool, error) {
	derived, err := s.Derive(tx, emp, today)
	if err != nil {
		return false, err
	}
	if emp.Status == derived {
		return false, nil
	}

	if err := tx.Model(&domain.Employee{}).
		Where("employee_id = ?", emp.EmployeeID).
		Update("status", derived).Error; err != nil {
		return false, err
	}
	emp.Status = derived
	return true, nil
}

// CurrentAllocation returns the employee's most recent active allocation,
// preferring non-trainee rows; a trainee row is returned only when it is all
// they have.
func (s *Service) CurrentAllocation(tx *gorm.DB, employeeID uuid.UUID, today time.Time) (*domain.Allocation, error) {
	active, err := activeAllocations(tx, employeeID, today)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	for i := range active {
		if !active[i].IsTrainee {
			return &active[i], nil
		}
	}
	return &active[0], nil
}

func activeAllocations(tx *gorm.DB, employeeID uuid.UUID, today time.Time) ([]domain.Allocation, error) {
	var allocations []domain.Allocation
	err := tx.
		Where("employee_id = ?", employeeID).
		Where("start_date <= ?", today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("start_date DESC").
		Find(&allocations).Error
	return allocations, err
}
