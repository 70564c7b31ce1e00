package allocations

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, used with errors.Is.
var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrOverAllocation     = errors.New("total allocation exceeds 100%")
	ErrPercentageRange    = errors.New("percentage out of range")
	ErrTraineeInvariant   = errors.New("trainee invariant violated")
)

// PercentageRangeError reports a percentage outside [0, 100].
type PercentageRangeError struct {
	Field string
	Value int
}

func (e *PercentageRangeError) Error() string {
	return fmt.Sprintf("%s must be between 0 and 100, got %d", e.Field, e.Value)
}

func (e *PercentageRangeError) Unwrap() error {
	return ErrPercentageRange
}

// OverAllocationError carries both totals so the caller can render a precise
// rejection message.
type OverAllocationError struct {
	EmployeeName string
	CurrentTotal int
	WouldBeTotal int
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf(
		"total internal allocation for %s would be %d%%; maximum allowed is 100%%; current overlapping allocations total %d%%",
		e.EmployeeName, e.WouldBeTotal, e.CurrentTotal)
}

func (e *OverAllocationError) Unwrap() error {
	return ErrOverAllocation
}

// Violation is one broken trainee rule. Checks collect every violation
// instead of stopping at the first, so all problems surface at once.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TraineeViolationError aggregates every broken trainee rule on a write.
type TraineeViolationError struct {
	Violations []Violation
}

func (e *TraineeViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "trainee allocation invalid: " + strings.Join(msgs, "; ")
}

func (e *TraineeViolationError) Unwrap() error {
	return ErrTraineeInvariant
}

// IsClientError reports whether the error is due to invalid input rather
// than a storage failure. Handlers map these to 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOverAllocation) ||
		errors.Is(err, ErrPercentageRange) ||
		errors.Is(err, ErrTraineeInvariant)
}
