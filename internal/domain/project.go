package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is the engagement an allocation commits capacity to. DomainID
// scopes rate lookups (domain-specific rate cards beat base cards).
type Project struct {
	ProjectID   uuid.UUID  `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	ClientName  string     `gorm:"column:client_name;not null" json:"client_name"`
	ProjectName string     `gorm:"column:project_name;not null" json:"project_name"`
	DomainID    *uuid.UUID `gorm:"column:domain_id;type:uuid" json:"domain_id"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate     *time.Time `gorm:"column:end_date" json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}
