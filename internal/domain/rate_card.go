package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateCard is a time-bounded hourly rate for an employee, optionally scoped
// to an industry domain. Several cards can coexist per employee; the
// resolver picks the most specific currently-effective one.
type RateCard struct {
	RateCardID    uuid.UUID  `gorm:"column:rate_card_id;type:uuid;primaryKey" json:"rate_card_id"`
	EmployeeID    uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	DomainID      *uuid.UUID `gorm:"column:domain_id;type:uuid;index" json:"domain_id"`
	HourlyRate    float64    `gorm:"column:hourly_rate;type:decimal(18,2);not null" json:"hourly_rate"`
	RateType      RateType   `gorm:"column:rate_type;type:varchar(20);not null" json:"rate_type"`
	EffectiveDate time.Time  `gorm:"column:effective_date;not null" json:"effective_date"`
	ExpiryDate    *time.Time `gorm:"column:expiry_date" json:"expiry_date"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (RateCard) TableName() string {
	return "rate_cards"
}

func (r *RateCard) BeforeCreate(tx *gorm.DB) error {
	if r.RateCardID == uuid.Nil {
		r.RateCardID = uuid.New()
	}
	return nil
}

// EffectiveOn reports whether the card applies on the given day.
func (r *RateCard) EffectiveOn(day time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveDate.After(day) {
		return false
	}
	return r.ExpiryDate == nil || !r.ExpiryDate.Before(day)
}
