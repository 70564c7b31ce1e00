package employees

import (
	"errors"
	"time"

	empsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/employees"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handlers bundles employee lifecycle handlers.
type Handlers struct {
	Service *empsvc.Service
}

type onboardRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	CTCMonthly float64 `json:"ctc_monthly"`
	Currency   string  `json:"currency"`
	JoinedDate *string `json:"joined_date"`
}

// Onboard POST /api/v1/employees
func (h *Handlers) Onboard(c *fiber.Ctx) error {
	var req onboardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return response.Error(c, "first_name, last_name and email are required", fiber.StatusBadRequest, nil)
	}

	var joined *time.Time
	if req.JoinedDate != nil && *req.JoinedDate != "" {
		t, err := time.Parse(dateLayout, *req.JoinedDate)
		if err != nil {
			return response.Error(c, "joined_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		joined = &t
	}

	emp, err := h.Service.Onboard(c.Context(), empsvc.OnboardInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		CTCMonthly: req.CTCMonthly,
		Currency:   req.Currency,
		JoinedDate: joined,
	})
	if err != nil {
		switch {
		case errors.Is(err, empsvc.ErrEmailTaken), errors.Is(err, empsvc.ErrInvalidCost):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Employee onboarded", emp, nil)
}

// Get GET /api/v1/employees/:id — status in the payload is freshly derived.
func (h *Handlers) Get(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	emp, err := h.Service.Get(c.Context(), employeeID)
	if err != nil {
		if errors.Is(err, empsvc.ErrEmployeeNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Employee fetched", emp, nil)
}

// List GET /api/v1/employees
func (h *Handlers) List(c *fiber.Ctx) error {
	emps, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Employees fetched", emps, nil)
}

// DeclareNotice PATCH /api/v1/employees/:id/notice-period
func (h *Handlers) DeclareNotice(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	emp, err := h.Service.DeclareNoticePeriod(c.Context(), employeeID)
	if err != nil {
		if errors.Is(err, empsvc.ErrEmployeeNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notice period declared", emp, nil)
}

// ClearNotice DELETE /api/v1/employees/:id/notice-period
func (h *Handlers) ClearNotice(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	emp, err := h.Service.ClearNoticePeriod(c.Context(), employeeID)
	if err != nil {
		switch {
		case errors.Is(err, empsvc.ErrEmployeeNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, empsvc.ErrNotOnNotice):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Notice period cleared", emp, nil)
}

type updateCostRequest struct {
	CTCMonthly float64 `json:"ctc_monthly"`
}

// UpdateCost PATCH /api/v1/employees/:id/cost — rebuilds financial snapshots.
func (h *Handlers) UpdateCost(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req updateCostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	emp, err := h.Service.UpdateCost(c.Context(), employeeID, req.CTCMonthly)
	if err != nil {
		switch {
		case errors.Is(err, empsvc.ErrEmployeeNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, empsvc.ErrInvalidCost):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Employee cost updated", emp, nil)
}

// Deactivate DELETE /api/v1/employees/:id — soft-disable, never a hard delete.
func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Deactivate(c.Context(), employeeID); err != nil {
		if errors.Is(err, empsvc.ErrEmployeeNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Employee deactivated", nil, nil)
}
