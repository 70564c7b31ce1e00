package allocations

import (
	"fmt"

	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"gorm.io/gorm"
)

// Trainee rule codes, surfaced in Violation.Code.
const (
	ViolationTraineeBillable  = "trainee_billable"
	ViolationTraineeRate      = "trainee_billing_rate"
	ViolationMentorMissing    = "mentor_missing"
	ViolationMentorSelf       = "mentor_is_self"
	ViolationMentorNotStaffed = "mentor_not_staffed"
)

// CheckTrainee enforces the structural trainee rules on a single row:
// a trainee is never billable, carries no billing rate, and must reference
// a mentor other than themselves. Returns every violation, not just the
// first.
func CheckTrainee(a *domain.Allocation) []Violation {
	if !a.IsTrainee {
		return nil
	}

	var violations []Violation
	if a.BillablePercentage != 0 {
		violations = append(violations, Violation{
			Code:    ViolationTraineeBillable,
			Message: fmt.Sprintf("trainee allocations must have billable_percentage 0, got %d", a.BillablePercentage),
		})
	}
	if a.BillingRate != nil && *a.BillingRate != 0 {
		violations = append(violations, Violation{
			Code:    ViolationTraineeRate,
			Message: fmt.Sprintf("trainee allocations must not carry a billing rate, got %.2f", *a.BillingRate),
		})
	}
	switch {
	case a.MentoringPrimaryEmpID == nil:
		violations = append(violations, Violation{
			Code:    ViolationMentorMissing,
			Message: "trainee allocations must reference a mentoring primary employee",
		})
	case *a.MentoringPrimaryEmpID == a.EmployeeID:
		violations = append(violations, Violation{
			Code:    ViolationMentorSelf,
			Message: "a trainee cannot mentor themselves",
		})
	}
	return violations
}

// CheckMentor verifies the mentor holds a non-trainee allocation on the same
// project overlapping the trainee's date range. Runs inside the write
// transaction, never outside it.
func CheckMentor(tx *gorm.DB, a *domain.Allocation) ([]Violation, error) {
	if !a.IsTrainee || a.MentoringPrimaryEmpID == nil || *a.MentoringPrimaryEmpID == a.EmployeeID {
		return nil, nil
	}

	var mentorRows []domain.Allocation
	err := tx.
		Where("employee_id = ? AND project_id = ? AND is_trainee = ?", *a.MentoringPrimaryEmpID, a.ProjectID, false).
		Find(&mentorRows).Error
	if err != nil {
		return nil, err
	}

	for i := range mentorRows {
		if mentorRows[i].Overlaps(a.StartDate, a.EndDate) {
			return nil, nil
		}
	}
	return []Violation{{
		Code:    ViolationMentorNotStaffed,
		Message: "the mentor must hold a non-trainee allocation on the same project overlapping the trainee's date range",
	}}, nil
}
