package allocations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	allocsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/allocations"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/status"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/locks"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Employee{}, &domain.Project{}, &domain.Allocation{},
		&domain.AllocationFinancial{}, &domain.RateCard{}, &domain.AllocationEvent{},
	))

	rateService := &rates.Service{DB: db}
	svc := &allocsvc.Service{
		DB:         db,
		Locks:      locks.NewKeyed(),
		Status:     &status.Service{DB: db},
		Financials: &financials.Service{DB: db, Resolver: rateService},
		Today: func() time.Time {
			return time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
		},
	}
	h := &Handlers{Service: svc}

	app := fiber.New()
	group := app.Group("/api/v1/allocations")
	group.Post("/", h.Create)
	group.Post("/validate", h.Validate)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Get("/employee/:employee_id", h.ListForEmployee)
	group.Get("/:id", h.Get)
	return app, db
}

func seedHandlerFixture(t *testing.T, db *gorm.DB) (*domain.Employee, *domain.Project) {
	t.Helper()
	emp := domain.Employee{
		FirstName:  "Asha",
		LastName:   "Verma",
		Email:      uuid.New().String() + "@example.com",
		CTCMonthly: 8000,
		Active:     true,
	}
	require.NoError(t, db.Create(&emp).Error)
	proj := domain.Project{ClientName: "Acme Corp", ProjectName: "Checkout Rebuild"}
	require.NoError(t, db.Create(&proj).Error)
	return &emp, &proj
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func TestCreateEndpoint_Success(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"project_id":                     proj.ProjectID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 60,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, emp.EmployeeID.String(), data["employee_id"])
	assert.EqualValues(t, 60, data["internal_allocation_percentage"])
}

func TestCreateEndpoint_OverAllocationDetails(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	payload := fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"project_id":                     proj.ProjectID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 60,
	}
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", payload)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])

	errObj := body["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.EqualValues(t, 60, details["current_total"])
	assert.EqualValues(t, 120, details["would_be_total"])
}

func TestCreateEndpoint_TraineeViolations(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"project_id":                     proj.ProjectID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 0,
		"is_trainee":                     true,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	errObj := body["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	violations := details["violations"].([]interface{})
	require.NotEmpty(t, violations)

	codes := make([]string, 0, len(violations))
	for _, v := range violations {
		codes = append(codes, v.(map[string]interface{})["code"].(string))
	}
	assert.Contains(t, codes, "trainee_billable")
	assert.Contains(t, codes, "mentor_missing")
}

func TestCreateEndpoint_BadInput(t *testing.T) {
	app, db := setupApp(t)
	_, proj := seedHandlerFixture(t, db)

	// Malformed UUID.
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id": "not-a-uuid",
		"project_id":  proj.ProjectID.String(),
		"start_date":  "2025-02-01",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown employee.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id": uuid.New().String(),
		"project_id":  proj.ProjectID.String(),
		"start_date":  "2025-02-01",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestValidateEndpoint_VerdictShape(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"project_id":                     proj.ProjectID.String(),
		"start_date":                     "2025-01-01",
		"internal_allocation_percentage": 60,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Over-capacity dry run: still 200, verdict says no.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/validate", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 50,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_valid"])
	assert.EqualValues(t, 60, data["current_total"])
	assert.EqualValues(t, 110, data["would_be_total"])
	assert.NotEmpty(t, data["error_message"])

	// Fits: no error_message in the payload.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/validate", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 40,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_valid"])
	_, hasMessage := data["error_message"]
	assert.False(t, hasMessage)
}

func TestUpdateAndDeleteEndpoints(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	_, body := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
		"employee_id":                    emp.EmployeeID.String(),
		"project_id":                     proj.ProjectID.String(),
		"start_date":                     "2025-02-01",
		"internal_allocation_percentage": 60,
	})
	allocationID := body["data"].(map[string]interface{})["allocation_id"].(string)

	resp, body := doJSON(t, app, fiber.MethodPut, "/api/v1/allocations/"+allocationID, fiber.Map{
		"internal_allocation_percentage": 80,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 80, data["internal_allocation_percentage"])

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/allocations/"+allocationID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/allocations/"+allocationID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListForEmployeeEndpoint(t *testing.T) {
	app, db := setupApp(t)
	emp, proj := seedHandlerFixture(t, db)

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/allocations/", fiber.Map{
			"employee_id":                    emp.EmployeeID.String(),
			"project_id":                     proj.ProjectID.String(),
			"start_date":                     fmt.Sprintf("2025-0%d-01", i+1),
			"end_date":                       fmt.Sprintf("2025-0%d-28", i+1),
			"internal_allocation_percentage": 50,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/allocations/employee/"+emp.EmployeeID.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]interface{}), 2)
}
