package rates

import (
	"errors"
	"time"

	ratesvc "github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handlers bundles rate card handlers.
type Handlers struct {
	Service *ratesvc.Service
}

type createRequest struct {
	EmployeeID    string  `json:"employee_id"`
	DomainID      *string `json:"domain_id"`
	HourlyRate    float64 `json:"hourly_rate"`
	EffectiveDate string  `json:"effective_date"`
	ExpiryDate    *string `json:"expiry_date"`
}

// Create POST /api/v1/rate-cards
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return response.Error(c, "employee_id must be a valid UUID", fiber.StatusBadRequest, nil)
	}
	effective, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		return response.Error(c, "effective_date is required (YYYY-MM-DD)", fiber.StatusBadRequest, nil)
	}

	var domainID *uuid.UUID
	if req.DomainID != nil && *req.DomainID != "" {
		id, err := uuid.Parse(*req.DomainID)
		if err != nil {
			return response.Error(c, "domain_id must be a valid UUID", fiber.StatusBadRequest, nil)
		}
		domainID = &id
	}
	var expiry *time.Time
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		t, err := time.Parse(dateLayout, *req.ExpiryDate)
		if err != nil {
			return response.Error(c, "expiry_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		expiry = &t
	}

	card, err := h.Service.Create(c.Context(), ratesvc.CreateInput{
		EmployeeID:    employeeID,
		DomainID:      domainID,
		HourlyRate:    req.HourlyRate,
		EffectiveDate: effective,
		ExpiryDate:    expiry,
	})
	if err != nil {
		switch {
		case errors.Is(err, ratesvc.ErrEmployeeNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ratesvc.ErrInvalidRate), errors.Is(err, ratesvc.ErrInvalidWindow):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Rate card created", card, nil)
}

// Deactivate PATCH /api/v1/rate-cards/:id/deactivate
func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	rateCardID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid rate card ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Deactivate(c.Context(), rateCardID); err != nil {
		if errors.Is(err, ratesvc.ErrRateCardNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Rate card deactivated", nil, nil)
}

// ListForEmployee GET /api/v1/rate-cards/employee/:employee_id
func (h *Handlers) ListForEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employee_id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	cards, err := h.Service.ListForEmployee(c.Context(), employeeID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Rate cards fetched", cards, nil)
}

// Resolve GET /api/v1/rate-cards/resolve/:employee_id?domain_id=&as_of=
// Returns the applicable rate with its source; a missing rate is not an
// error, Source comes back NONE.
func (h *Handlers) Resolve(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("employee_id"))
	if err != nil {
		return response.Error(c, "Invalid employee ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}

	var domainID *uuid.UUID
	if raw := c.Query("domain_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, "domain_id must be a valid UUID", fiber.StatusBadRequest, nil)
		}
		domainID = &id
	}
	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return response.Error(c, "as_of must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		asOf = t
	}

	resolved, err := h.Service.Resolve(c.Context(), h.Service.DB.WithContext(c.Context()), employeeID, domainID, nil, asOf)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Rate resolved", resolved, nil)
}
