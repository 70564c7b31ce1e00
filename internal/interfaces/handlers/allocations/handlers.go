package allocations

import (
	"errors"
	"time"

	allocsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/allocations"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handlers bundles allocation write/read handlers.
type Handlers struct {
	Service *allocsvc.Service
}

type allocationRequest struct {
	EmployeeID                   string   `json:"employee_id"`
	ProjectID                    string   `json:"project_id"`
	StartDate                    string   `json:"start_date"`
	EndDate                      *string  `json:"end_date"`
	AllocationPercentage         *int     `json:"allocation_percentage"`
	InternalAllocationPercentage *int     `json:"internal_allocation_percentage"`
	BillablePercentage           *int     `json:"billable_percentage"`
	BillingRate                  *float64 `json:"billing_rate"`
	IsTrainee                    bool     `json:"is_trainee"`
	MentoringPrimaryEmpID        *string  `json:"mentoring_primary_emp_id"`
}

// Create POST /api/v1/allocations
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req allocationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return response.Error(c, "employee_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return response.Error(c, "project_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return response.Error(c, "start_date is required (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return response.Error(c, "end_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	mentorID, err := parseOptionalUUID(req.MentoringPrimaryEmpID)
	if err != nil {
		return response.Error(c, "mentoring_primary_emp_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}

	alloc, err := h.Service.Create(c.Context(), allocsvc.CreateInput{
		EmployeeID:                   employeeID,
		ProjectID:                    projectID,
		StartDate:                    start,
		EndDate:                      end,
		AllocationPercentage:         req.AllocationPercentage,
		InternalAllocationPercentage: req.InternalAllocationPercentage,
		BillablePercentage:           req.BillablePercentage,
		BillingRate:                  req.BillingRate,
		IsTrainee:                    req.IsTrainee,
		MentoringPrimaryEmpID:        mentorID,
	})
	if err != nil {
		return writeAllocationError(c, err)
	}
	return response.SuccessCreated(c, "Allocation created", alloc, nil)
}

type updateRequest struct {
	StartDate                    *string  `json:"start_date"`
	EndDate                      *string  `json:"end_date"`
	ClearEndDate                 bool     `json:"clear_end_date"`
	AllocationPercentage         *int     `json:"allocation_percentage"`
	InternalAllocationPercentage *int     `json:"internal_allocation_percentage"`
	BillablePercentage           *int     `json:"billable_percentage"`
	BillingRate                  *float64 `json:"billing_rate"`
	IsTrainee                    *bool    `json:"is_trainee"`
	MentoringPrimaryEmpID        *string  `json:"mentoring_primary_emp_id"`
}

// Update PUT /api/v1/allocations/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	allocationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid allocation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	in := allocsvc.UpdateInput{
		ClearEndDate:                 req.ClearEndDate,
		AllocationPercentage:         req.AllocationPercentage,
		InternalAllocationPercentage: req.InternalAllocationPercentage,
		BillablePercentage:           req.BillablePercentage,
		BillingRate:                  req.BillingRate,
		IsTrainee:                    req.IsTrainee,
	}
	if req.StartDate != nil {
		start, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			return response.Error(c, "start_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		in.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return response.Error(c, "end_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		in.EndDate = end
	}
	mentorID, err := parseOptionalUUID(req.MentoringPrimaryEmpID)
	if err != nil {
		return response.Error(c, "mentoring_primary_emp_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}
	in.MentoringPrimaryEmpID = mentorID

	alloc, err := h.Service.Update(c.Context(), allocationID, in)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return response.Success(c, "Allocation updated", alloc, nil)
}

// Delete DELETE /api/v1/allocations/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	allocationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid allocation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), allocationID); err != nil {
		return writeAllocationError(c, err)
	}
	return response.Success(c, "Allocation removed", nil, nil)
}

// Get GET /api/v1/allocations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	allocationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid allocation ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	alloc, err := h.Service.Get(c.Context(), allocationID)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return response.Success(c, "Allocation fetched", alloc, nil)
}

// ListForEmployee GET /api/v1/allocations/employee/:employee_id
func (h *Handlers) ListForEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employee_id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	allocations, err := h.Service.ListForEmployee(c.Context(), employeeID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Allocations fetched", allocations, nil)
}

type validateRequest struct {
	EmployeeID                   string  `json:"employee_id"`
	InternalAllocationPercentage int     `json:"internal_allocation_percentage"`
	StartDate                    string  `json:"start_date"`
	EndDate                      *string `json:"end_date"`
	ExcludeAllocationID          *string `json:"exclude_allocation_id"`
}

// Validate POST /api/v1/allocations/validate — dry-run capacity check.
// Always 200; the verdict carries is_valid and both totals.
func (h *Handlers) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return response.Error(c, "employee_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return response.Error(c, "start_date is required (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return response.Error(c, "end_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	excludeID, err := parseOptionalUUID(req.ExcludeAllocationID)
	if err != nil {
		return response.Error(c, "exclude_allocation_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}

	verdict, err := h.Service.DryRun(c.Context(), employeeID, req.InternalAllocationPercentage, start, end, excludeID)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return response.Success(c, "Validation complete", verdict, nil)
}

func writeAllocationError(c *fiber.Ctx, err error) error {
	var overErr *allocsvc.OverAllocationError
	if errors.As(err, &overErr) {
		return response.Error(c, overErr.Error(), fiber.StatusBadRequest, fiber.Map{
			"current_total":  overErr.CurrentTotal,
			"would_be_total": overErr.WouldBeTotal,
		})
	}
	var traineeErr *allocsvc.TraineeViolationError
	if errors.As(err, &traineeErr) {
		return response.Error(c, traineeErr.Error(), fiber.StatusBadRequest, fiber.Map{
			"violations": traineeErr.Violations,
		})
	}
	var rangeErr *allocsvc.PercentageRangeError
	if errors.As(err, &rangeErr) {
		return response.Error(c, rangeErr.Error(), fiber.StatusBadRequest, nil)
	}
	switch {
	case errors.Is(err, allocsvc.ErrEmployeeNotFound),
		errors.Is(err, allocsvc.ErrProjectNotFound),
		errors.Is(err, allocsvc.ErrAllocationNotFound):
		return response.NotFound(c, err.Error())
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
