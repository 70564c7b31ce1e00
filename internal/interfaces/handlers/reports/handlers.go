package reports

import (
	"errors"
	"time"

	finsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handlers bundles financial report handlers. Reads are consistent-snapshot
// queries and run outside any allocation lock.
type Handlers struct {
	Service *finsvc.Service
}

func asOf(c *fiber.Ctx) (time.Time, error) {
	if raw := c.Query("as_of"); raw != "" {
		return time.Parse(dateLayout, raw)
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Allocations GET /api/v1/reports/allocations?as_of=
func (h *Handlers) Allocations(c *fiber.Ctx) error {
	day, err := asOf(c)
	if err != nil {
		return response.Error(c, "as_of must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	rows, err := h.Service.Report(c.Context(), day)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Allocation report generated", rows, fiber.Map{"as_of": day.Format(dateLayout)})
}

// Employee GET /api/v1/reports/employees/:id?as_of=
func (h *Handlers) Employee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	day, err := asOf(c)
	if err != nil {
		return response.Error(c, "as_of must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	rows, err := h.Service.EmployeeReport(c.Context(), employeeID, day)
	if err != nil {
		if errors.Is(err, finsvc.ErrEmployeeNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Employee report generated", rows, fiber.Map{"as_of": day.Format(dateLayout)})
}

// Summary GET /api/v1/reports/summary?as_of=
func (h *Handlers) Summary(c *fiber.Ctx) error {
	day, err := asOf(c)
	if err != nil {
		return response.Error(c, "as_of must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	summary, err := h.Service.Summarize(c.Context(), day)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Summary generated", summary, fiber.Map{"as_of": day.Format(dateLayout)})
}
