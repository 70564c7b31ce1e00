package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a staffable resource. Rows are never deleted; offboarding
// flips Active off so historical allocations keep their reference.
type Employee struct {
	EmployeeID uuid.UUID      `gorm:"column:employee_id;type:uuid;primaryKey" json:"employee_id"`
	FirstName  string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName   string         `gorm:"column:last_name;not null" json:"last_name"`
	Email      string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	CTCMonthly float64        `gorm:"column:ctc_monthly;type:decimal(18,2);not null" json:"ctc_monthly"`
	Currency   string         `gorm:"column:currency;default:USD" json:"currency"`
	Status     EmployeeStatus `gorm:"column:status;type:varchar(20);default:BENCH" json:"status"`
	JoinedDate *time.Time     `gorm:"column:joined_date" json:"joined_date"`
	Active     bool           `gorm:"column:active;default:true" json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.EmployeeID == uuid.Nil {
		e.EmployeeID = uuid.New()
	}
	if e.Status == "" {
		e.Status = StatusBench
	}
	return nil
}

// FullName is used in validation messages.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
