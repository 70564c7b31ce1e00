package employees

import (
	"context"
	"testing"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/status"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEmployees(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Employee{}, &domain.Project{}, &domain.Allocation{},
		&domain.AllocationFinancial{}, &domain.RateCard{},
	))

	svc := &Service{
		DB:         db,
		Status:     &status.Service{DB: db},
		Financials: &financials.Service{DB: db, Resolver: &rates.Service{DB: db}},
		Today:      func() time.Time { return day(2025, 2, 15) },
	}
	return svc, db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pct(v int) *int { return &v }

func onboard(t *testing.T, svc *Service, email string) *domain.Employee {
	t.Helper()
	emp, err := svc.Onboard(context.Background(), OnboardInput{
		FirstName:  "Sana",
		LastName:   "Khan",
		Email:      email,
		CTCMonthly: 7000,
		Currency:   "USD",
	})
	require.NoError(t, err)
	return emp
}

func staff(t *testing.T, db *gorm.DB, empID uuid.UUID, internalPct int, start time.Time, end *time.Time) *domain.Allocation {
	t.Helper()
	alloc := domain.Allocation{
		EmployeeID:                   empID,
		ProjectID:                    uuid.New(),
		StartDate:                    start,
		EndDate:                      end,
		AllocationPercentage:         pct(internalPct),
		InternalAllocationPercentage: pct(internalPct),
		BillablePercentage:           100,
	}
	require.NoError(t, db.Create(&alloc).Error)
	return &alloc
}

func TestOnboard_StartsOnBench(t *testing.T) {
	svc, _ := setupEmployees(t)
	emp := onboard(t, svc, "sana.khan@example.com")
	assert.Equal(t, domain.StatusBench, emp.Status)
	assert.True(t, emp.Active)
	assert.NotEqual(t, uuid.Nil, emp.EmployeeID)
}

func TestOnboard_Validation(t *testing.T) {
	svc, _ := setupEmployees(t)
	onboard(t, svc, "taken@example.com")

	_, err := svc.Onboard(context.Background(), OnboardInput{
		FirstName: "Dup", LastName: "User", Email: "taken@example.com", CTCMonthly: 5000,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Onboard(context.Background(), OnboardInput{
		FirstName: "Zero", LastName: "Cost", Email: "zero@example.com", CTCMonthly: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestGet_DerivesStatusFresh(t *testing.T) {
	svc, db := setupEmployees(t)
	emp := onboard(t, svc, "fresh@example.com")
	staff(t, db, emp.EmployeeID, 60, day(2025, 1, 1), nil)

	// The stored row still says BENCH; Get must not trust it.
	got, err := svc.Get(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAllocated, got.Status)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestNoticePeriod_StickyAcrossAllocationChanges(t *testing.T) {
	svc, db := setupEmployees(t)
	emp := onboard(t, svc, "leaving@example.com")
	staff(t, db, emp.EmployeeID, 100, day(2025, 1, 1), nil)

	declared, err := svc.DeclareNoticePeriod(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoticePeriod, declared.Status)

	// Fully staffed, yet Get keeps reporting NOTICE_PERIOD.
	got, err := svc.Get(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoticePeriod, got.Status)
}

func TestClearNoticePeriod_RederivesFromAllocations(t *testing.T) {
	svc, db := setupEmployees(t)
	emp := onboard(t, svc, "staying@example.com")
	staff(t, db, emp.EmployeeID, 100, day(2025, 1, 1), nil)

	_, err := svc.DeclareNoticePeriod(context.Background(), emp.EmployeeID)
	require.NoError(t, err)

	cleared, err := svc.ClearNoticePeriod(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAllocated, cleared.Status)

	// Clearing someone not on notice is an error.
	_, err = svc.ClearNoticePeriod(context.Background(), emp.EmployeeID)
	assert.ErrorIs(t, err, ErrNotOnNotice)
}

func TestClearNoticePeriod_BackToBenchWhenUnstaffed(t *testing.T) {
	svc, _ := setupEmployees(t)
	emp := onboard(t, svc, "benched@example.com")

	_, err := svc.DeclareNoticePeriod(context.Background(), emp.EmployeeID)
	require.NoError(t, err)

	cleared, err := svc.ClearNoticePeriod(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBench, cleared.Status)
}

func TestUpdateCost_RebuildsFinancialSnapshots(t *testing.T) {
	svc, db := setupEmployees(t)
	emp := onboard(t, svc, "raise@example.com")
	alloc := staff(t, db, emp.EmployeeID, 100, day(2025, 1, 1), nil)

	// Seed a stale snapshot at the old cost.
	require.NoError(t, svc.Financials.RebuildForEmployee(context.Background(), emp.EmployeeID, day(2025, 2, 15)))
	var before domain.AllocationFinancial
	require.NoError(t, db.Where("allocation_id = ?", alloc.AllocationID).First(&before).Error)
	assert.Equal(t, 43.75, before.CostRate) // 7000 / 160

	updated, err := svc.UpdateCost(context.Background(), emp.EmployeeID, 9600)
	require.NoError(t, err)
	assert.Equal(t, 9600.0, updated.CTCMonthly)

	var after domain.AllocationFinancial
	require.NoError(t, db.Where("allocation_id = ?", alloc.AllocationID).First(&after).Error)
	assert.Equal(t, 60.0, after.CostRate) // 9600 / 160

	_, err = svc.UpdateCost(context.Background(), emp.EmployeeID, -1)
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestList_ActiveOnly(t *testing.T) {
	svc, _ := setupEmployees(t)
	keep := onboard(t, svc, "keep@example.com")
	drop := onboard(t, svc, "drop@example.com")

	require.NoError(t, svc.Deactivate(context.Background(), drop.EmployeeID))

	emps, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, keep.EmployeeID, emps[0].EmployeeID)

	assert.ErrorIs(t, svc.Deactivate(context.Background(), uuid.New()), ErrEmployeeNotFound)
}
