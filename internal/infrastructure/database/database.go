package database

import (
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when running behind connection
// poolers (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate creates or updates the ledger schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Employee{},
		&domain.Project{},
		&domain.Allocation{},
		&domain.AllocationFinancial{},
		&domain.RateCard{},
		&domain.AllocationEvent{},
	)
}

// BackfillPercentages fills the split percentage columns on rows written
// before the allocation/internal/billable split, resolving the legacy
// fallback chain once at migration time:
// internal <- COALESCE(allocation, utilization, 100).
func BackfillPercentages(db *gorm.DB) error {
	if err := db.Exec(`
		UPDATE allocations
		SET allocation_percentage = COALESCE(allocation_percentage, utilization, 100)
		WHERE allocation_percentage IS NULL`).Error; err != nil {
		return err
	}
	return db.Exec(`
		UPDATE allocations
		SET internal_allocation_percentage = COALESCE(internal_allocation_percentage, allocation_percentage, utilization, 100)
		WHERE internal_allocation_percentage IS NULL`).Error
}
