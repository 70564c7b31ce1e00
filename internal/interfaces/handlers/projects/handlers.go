package projects

import (
	"errors"
	"time"

	projsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/projects"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handlers bundles project handlers.
type Handlers struct {
	Service *projsvc.Service
}

type createRequest struct {
	ClientName  string  `json:"client_name"`
	ProjectName string  `json:"project_name"`
	DomainID    *string `json:"domain_id"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Create POST /api/v1/projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.ClientName == "" || req.ProjectName == "" {
		return response.Error(c, "client_name and project_name are required", fiber.StatusBadRequest, nil)
	}

	var domainID *uuid.UUID
	if req.DomainID != nil && *req.DomainID != "" {
		id, err := uuid.Parse(*req.DomainID)
		if err != nil {
			return response.Error(c, "domain_id must be a valid UUID", fiber.StatusBadRequest, nil)
		}
		domainID = &id
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return response.Error(c, "start_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return response.Error(c, "end_date must be YYYY-MM-DD", fiber.StatusBadRequest, nil)
	}

	proj, err := h.Service.Create(c.Context(), projsvc.CreateInput{
		ClientName:  req.ClientName,
		ProjectName: req.ProjectName,
		DomainID:    domainID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Project created", proj, nil)
}

// Get GET /api/v1/projects/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid project ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	proj, err := h.Service.Get(c.Context(), projectID)
	if err != nil {
		if errors.Is(err, projsvc.ErrProjectNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Project fetched", proj, nil)
}

// List GET /api/v1/projects
func (h *Handlers) List(c *fiber.Ctx) error {
	projects, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Projects fetched", projects, nil)
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
