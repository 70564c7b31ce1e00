package allocations

import (
	"fmt"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verdict is the result of an overlap validation. It carries both totals so
// rejections can be rendered precisely. A Verdict is advisory: write paths
// reject on !IsValid, batch/seed callers may log and proceed.
type Verdict struct {
	IsValid      bool   `json:"is_valid"`
	CurrentTotal int    `json:"current_total"`
	WouldBeTotal int    `json:"would_be_total"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ValidateCapacity checks whether committing candidatePct of an employee's
// capacity over [start, end] would push the total committed capacity past
// 100% for any overlapping instant. excludeID skips the row being updated.
//
// A candidate of 0% is always admissible: a zero-percent row signals "not
// actually working" (a pure shadow entry) and never counts toward the sum.
// A total of exactly 100 is valid.
//
// Pure read, no side effects. The returned error is a storage failure only.
func ValidateCapacity(tx *gorm.DB, employeeID uuid.UUID, candidatePct int, start time.Time, end *time.Time, excludeID *uuid.UUID) (Verdict, error) {
	query := tx.Where("employee_id = ?", employeeID)
	if excludeID != nil {
		query = query.Where("allocation_id <> ?", *excludeID)
	}

	var existing []domain.Allocation
	if err := query.Find(&existing).Error; err != nil {
		return Verdict{}, err
	}

	currentTotal := 0
	for i := range existing {
		if !existing[i].Overlaps(start, end) {
			continue
		}
		currentTotal += existing[i].CapacityPercentage()
	}

	if candidatePct == 0 {
		return Verdict{IsValid: true, CurrentTotal: currentTotal, WouldBeTotal: currentTotal}, nil
	}

	wouldBe := currentTotal + candidatePct
	if wouldBe > 100 {
		name := employeeDisplayName(tx, employeeID)
		return Verdict{
			IsValid:      false,
			CurrentTotal: currentTotal,
			WouldBeTotal: wouldBe,
			ErrorMessage: fmt.Sprintf(
				"Total internal allocation for %s would be %d%%. Maximum allowed is 100%%. Current overlapping allocations total %d%%.",
				name, wouldBe, currentTotal),
		}, nil
	}

	return Verdict{IsValid: true, CurrentTotal: currentTotal, WouldBeTotal: wouldBe}, nil
}

func employeeDisplayName(tx *gorm.DB, employeeID uuid.UUID) string {
	var emp domain.Employee
	if err := tx.Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		return "employee " + employeeID.String()
	}
	return emp.FullName()
}
