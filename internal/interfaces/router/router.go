package router

import (
	allocsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/allocations"
	empsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/employees"
	finsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	projsvc "github.com/ravipaliwal885078/Benchcraft/internal/application/projects"
	ratesvc "github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	statussvc "github.com/ravipaliwal885078/Benchcraft/internal/application/status"
	"github.com/ravipaliwal885078/Benchcraft/internal/config"
	"github.com/ravipaliwal885078/Benchcraft/internal/infrastructure/database"
	allochandler "github.com/ravipaliwal885078/Benchcraft/internal/interfaces/handlers/allocations"
	emphandler "github.com/ravipaliwal885078/Benchcraft/internal/interfaces/handlers/employees"
	projhandler "github.com/ravipaliwal885078/Benchcraft/internal/interfaces/handlers/projects"
	ratehandler "github.com/ravipaliwal885078/Benchcraft/internal/interfaces/handlers/rates"
	reporthandler "github.com/ravipaliwal885078/Benchcraft/internal/interfaces/handlers/reports"
	"github.com/ravipaliwal885078/Benchcraft/internal/middleware"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/locks"
	"github.com/ravipaliwal885078/Benchcraft/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		if err := database.BackfillPercentages(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		dbUp := false
		if db != nil {
			if sqlDB, err := db.DB(); err == nil && sqlDB.Ping() == nil {
				dbUp = true
			}
		}
		return response.Success(c, "OK", fiber.Map{"database": dbUp}, nil)
	})

	if db != nil {
		statusService := &statussvc.Service{DB: db}
		rateService := &ratesvc.Service{DB: db, Cache: rdb}
		financialService := &finsvc.Service{DB: db, Resolver: rateService, HoursPerPeriod: cfg.HoursPerPeriod}
		allocationService := &allocsvc.Service{
			DB:         db,
			Locks:      locks.NewKeyed(),
			Status:     statusService,
			Financials: financialService,
		}
		employeeService := &empsvc.Service{DB: db, Status: statusService, Financials: financialService}
		projectService := &projsvc.Service{DB: db}

		// Employees
		empHandlers := &emphandler.Handlers{Service: employeeService}
		empGroup := app.Group("/api/v1/employees")
		empGroup.Post("/", empHandlers.Onboard)
		empGroup.Get("/", empHandlers.List)
		empGroup.Get("/:id", empHandlers.Get)
		empGroup.Patch("/:id/notice-period", empHandlers.DeclareNotice)
		empGroup.Delete("/:id/notice-period", empHandlers.ClearNotice)
		empGroup.Patch("/:id/cost", empHandlers.UpdateCost)
		empGroup.Delete("/:id", empHandlers.Deactivate)

		// Projects
		projHandlers := &projhandler.Handlers{Service: projectService}
		projGroup := app.Group("/api/v1/projects")
		projGroup.Post("/", projHandlers.Create)
		projGroup.Get("/", projHandlers.List)
		projGroup.Get("/:id", projHandlers.Get)

		// Allocations
		allocHandlers := &allochandler.Handlers{Service: allocationService}
		allocGroup := app.Group("/api/v1/allocations")
		allocGroup.Post("/", allocHandlers.Create)
		allocGroup.Post("/validate", allocHandlers.Validate)
		allocGroup.Get("/employee/:employee_id", allocHandlers.ListForEmployee)
		allocGroup.Get("/:id", allocHandlers.Get)
		allocGroup.Put("/:id", allocHandlers.Update)
		allocGroup.Delete("/:id", allocHandlers.Delete)

		// Rate cards
		rateHandlers := &ratehandler.Handlers{Service: rateService}
		rateGroup := app.Group("/api/v1/rate-cards")
		rateGroup.Post("/", rateHandlers.Create)
		rateGroup.Patch("/:id/deactivate", rateHandlers.Deactivate)
		rateGroup.Get("/employee/:employee_id", rateHandlers.ListForEmployee)
		rateGroup.Get("/resolve/:employee_id", rateHandlers.Resolve)

		// Reports
		reportHandlers := &reporthandler.Handlers{Service: financialService}
		reportGroup := app.Group("/api/v1/reports")
		reportGroup.Get("/allocations", reportHandlers.Allocations)
		reportGroup.Get("/employees/:id", reportHandlers.Employee)
		reportGroup.Get("/summary", reportHandlers.Summary)
	}

	return app, db, rdb, nil
}
