package employees

import (
	"context"
	"errors"
	"time"

	"github.com/ravipaliwal885078/Benchcraft/internal/application/financials"
	"github.com/ravipaliwal885078/Benchcraft/internal/application/status"
	"github.com/ravipaliwal885078/Benchcraft/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidCost      = errors.New("monthly cost must be positive")
	ErrNotOnNotice      = errors.New("employee is not on notice period")
)

// Service owns the employee lifecycle. Employees are never deleted;
// Deactivate soft-disables them.
type Service struct {
	DB         *gorm.DB
	Status     *status.Service
	Financials *financials.Service
	Today      func() time.Time
}

func (s *Service) today() time.Time {
	if s.Today != nil {
		return s.Today()
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// OnboardInput creates an employee; status starts at BENCH.
type OnboardInput struct {
	FirstName  string
	LastName   string
	Email      string
	CTCMonthly float64
	Currency   string
	JoinedDate *time.Time
}

func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*domain.Employee, error) {
	if in.CTCMonthly <= 0 {
		return nil, ErrInvalidCost
	}

	emp := domain.Employee{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		CTCMonthly: in.CTCMonthly,
		Currency:   in.Currency,
		JoinedDate: in.JoinedDate,
		Status:     domain.StatusBench,
		Active:     true,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Employee{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&emp).Error
	})
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// Get returns one employee with their status freshly derived (the stored
// value is only a cache).
func (s *Service) Get(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error) {
	var emp domain.Employee
	if err := s.DB.WithContext(ctx).Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	derived, err := s.Status.Derive(s.DB.WithContext(ctx), &emp, s.today())
	if err != nil {
		return nil, err
	}
	emp.Status = derived
	return &emp, nil
}

// List returns active employees.
func (s *Service) List(ctx context.Context) ([]domain.Employee, error) {
	var emps []domain.Employee
	err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("last_name, first_name").
		Find(&emps).Error
	return emps, err
}

// DeclareNoticePeriod marks an employee as serving notice. The flag is
// sticky: derivation is suppressed until ClearNoticePeriod.
func (s *Service) DeclareNoticePeriod(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error) {
	var emp domain.Employee
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		if err := tx.Model(&emp).Update("status", domain.StatusNoticePeriod).Error; err != nil {
			return err
		}
		emp.Status = domain.StatusNoticePeriod
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ClearNoticePeriod lifts the sticky flag and re-derives the status from the
// allocations.
func (s *Service) ClearNoticePeriod(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error) {
	var emp domain.Employee
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		if emp.Status != domain.StatusNoticePeriod {
			return ErrNotOnNotice
		}
		// Drop the sticky flag before deriving, otherwise Derive
		// short-circuits back to NOTICE_PERIOD.
		emp.Status = domain.StatusBench
		derived, err := s.Status.Derive(tx, &emp, s.today())
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Employee{}).
			Where("employee_id = ?", employeeID).
			Update("status", derived).Error; err != nil {
			return err
		}
		emp.Status = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// UpdateCost changes the monthly cost-to-company and rebuilds every
// financial snapshot that depends on it.
func (s *Service) UpdateCost(ctx context.Context, employeeID uuid.UUID, ctcMonthly float64) (*domain.Employee, error) {
	if ctcMonthly <= 0 {
		return nil, ErrInvalidCost
	}

	var emp domain.Employee
	if err := s.DB.WithContext(ctx).Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&emp).Update("ctc_monthly", ctcMonthly).Error; err != nil {
		return nil, err
	}
	emp.CTCMonthly = ctcMonthly

	if err := s.Financials.RebuildForEmployee(ctx, employeeID, s.today()); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Deactivate soft-disables an employee.
func (s *Service) Deactivate(ctx context.Context, employeeID uuid.UUID) error {
	result := s.DB.WithContext(ctx).Model(&domain.Employee{}).
		Where("employee_id = ?", employeeID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
