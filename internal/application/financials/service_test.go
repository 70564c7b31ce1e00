package financials

import (
	"context"
	"testing"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/application/rates"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFinancials(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Employee{}, &domain.Project{}, &domain.Allocation{},
		&domain.AllocationFinancial{}, &domain.RateCard{},
	))
	return &Service{DB: db, Resolver: &rates.Service{DB: db}}, db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedFixture(t *testing.T, db *gorm.DB, ctc float64, rate float64) (*domain.Employee, *domain.Project, *domain.Allocation) {
	t.Helper()
	emp := domain.Employee{
		FirstName:  "Meera",
		LastName:   "Iyer",
		Email:      uuid.New().String() + "@example.com",
		CTCMonthly: ctc,
		Active:     true,
	}
	require.NoError(t, db.Create(&emp).Error)

	proj := domain.Project{ClientName: "Globex", ProjectName: "Data Platform"}
	require.NoError(t, db.Create(&proj).Error)

	if rate > 0 {
		card := domain.RateCard{
			EmployeeID:    emp.EmployeeID,
			HourlyRate:    rate,
			RateType:      domain.RateTypeBase,
			EffectiveDate: day(2025, 1, 1),
			IsActive:      true,
		}
		require.NoError(t, db.Create(&card).Error)
	}

	full := 100
	alloc := domain.Allocation{
		EmployeeID:                   emp.EmployeeID,
		ProjectID:                    proj.ProjectID,
		StartDate:                    day(2025, 1, 1),
		AllocationPercentage:         &full,
		InternalAllocationPercentage: &full,
		BillablePercentage:           100,
	}
	require.NoError(t, db.Create(&alloc).Error)
	return &emp, &proj, &alloc
}

func TestSnapshotTx_CreatesThenUpserts(t *testing.T) {
	svc, db := setupFinancials(t)
	emp, proj, alloc := seedFixture(t, db, 8000, 100)
	ctx := context.Background()

	snap, err := svc.SnapshotTx(ctx, db, alloc, emp, proj, day(2025, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceBase, snap.RateSource)
	assert.Equal(t, 16000.0, snap.EstimatedRevenue)
	assert.Equal(t, 50.0, snap.GrossMarginPercentage)

	// A second snapshot updates in place, keeping one row per allocation.
	half := 50
	alloc.InternalAllocationPercentage = &half
	alloc.AllocationPercentage = &half
	again, err := svc.SnapshotTx(ctx, db, alloc, emp, proj, day(2025, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, snap.FinancialID, again.FinancialID)
	assert.Equal(t, 8000.0, again.EstimatedRevenue)

	var count int64
	require.NoError(t, db.Model(&domain.AllocationFinancial{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRebuildForEmployee_ReflectsCostChange(t *testing.T) {
	svc, db := setupFinancials(t)
	emp, proj, alloc := seedFixture(t, db, 8000, 100)
	ctx := context.Background()

	_, err := svc.SnapshotTx(ctx, db, alloc, emp, proj, day(2025, 2, 1))
	require.NoError(t, err)

	require.NoError(t, db.Model(emp).Update("ctc_monthly", 12000).Error)
	require.NoError(t, svc.RebuildForEmployee(ctx, emp.EmployeeID, day(2025, 2, 1)))

	var snap domain.AllocationFinancial
	require.NoError(t, db.Where("allocation_id = ?", alloc.AllocationID).First(&snap).Error)
	assert.Equal(t, 75.0, snap.CostRate) // 12000 / 160
	assert.Equal(t, 12000.0, snap.EstimatedCost)
	assert.Equal(t, 25.0, snap.GrossMarginPercentage)

	assert.ErrorIs(t, svc.RebuildForEmployee(ctx, uuid.New(), day(2025, 2, 1)), ErrEmployeeNotFound)
}

func TestReport_OnlyActiveAllocations(t *testing.T) {
	svc, db := setupFinancials(t)
	emp, proj, _ := seedFixture(t, db, 8000, 100)
	ctx := context.Background()

	// An ended allocation must not show up.
	ended := day(2024, 12, 31)
	full := 100
	old := domain.Allocation{
		EmployeeID:                   emp.EmployeeID,
		ProjectID:                    proj.ProjectID,
		StartDate:                    day(2024, 1, 1),
		EndDate:                      &ended,
		AllocationPercentage:         &full,
		InternalAllocationPercentage: &full,
		BillablePercentage:           100,
	}
	require.NoError(t, db.Create(&old).Error)

	rows, err := svc.Report(ctx, day(2025, 2, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Meera Iyer", rows[0].EmployeeName)
	assert.Equal(t, "Data Platform", rows[0].ProjectName)
	assert.Equal(t, domain.RateSourceBase, rows[0].RateSource)
	assert.Equal(t, domain.PostureBalanced, rows[0].Posture)
}

func TestEmployeeReport_UnknownEmployee(t *testing.T) {
	svc, _ := setupFinancials(t)
	_, err := svc.EmployeeReport(context.Background(), uuid.New(), day(2025, 2, 1))
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestSummarize_AggregatesPosturesAndGaps(t *testing.T) {
	svc, db := setupFinancials(t)
	ctx := context.Background()

	// Balanced, fully billed employee with a rate card.
	seedFixture(t, db, 8000, 100)

	// Over-billed employee: client sees 80%, internally 40%, no rate card.
	emp2 := domain.Employee{
		FirstName: "Dev", LastName: "Shah",
		Email:      uuid.New().String() + "@example.com",
		CTCMonthly: 6000, Active: true,
	}
	require.NoError(t, db.Create(&emp2).Error)
	proj2 := domain.Project{ClientName: "Initech", ProjectName: "Migration"}
	require.NoError(t, db.Create(&proj2).Error)
	client, internal := 80, 40
	require.NoError(t, db.Create(&domain.Allocation{
		EmployeeID:                   emp2.EmployeeID,
		ProjectID:                    proj2.ProjectID,
		StartDate:                    day(2025, 1, 1),
		AllocationPercentage:         &client,
		InternalAllocationPercentage: &internal,
		BillablePercentage:           100,
	}).Error)

	// Pure trainee shadow.
	trainee := domain.Employee{
		FirstName: "Tara", LastName: "Rao",
		Email:      uuid.New().String() + "@example.com",
		CTCMonthly: 3000, Active: true,
	}
	require.NoError(t, db.Create(&trainee).Error)
	zero := 0
	mentorID := emp2.EmployeeID
	require.NoError(t, db.Create(&domain.Allocation{
		EmployeeID:                   trainee.EmployeeID,
		ProjectID:                    proj2.ProjectID,
		StartDate:                    day(2025, 1, 1),
		AllocationPercentage:         &zero,
		InternalAllocationPercentage: &zero,
		BillablePercentage:           0,
		IsTrainee:                    true,
		MentoringPrimaryEmpID:        &mentorID,
	}).Error)

	sum, err := svc.Summarize(ctx, day(2025, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Allocations)
	assert.Equal(t, 1, sum.OverBilledCount)
	assert.Equal(t, 2, sum.MissingRateCount) // emp2 and the trainee shadow
	assert.Equal(t, 1, sum.TraineeCount)
	assert.Equal(t, 16000.0, sum.TotalRevenue)
	assert.Equal(t, 160, sum.HoursPerPeriodApplied)
	// revenue 16000, cost 8000 + 2400 + 0 = 10400
	assert.Equal(t, 10400.0, sum.TotalCost)
	assert.Equal(t, 35.0, sum.BlendedMarginPct)
}
