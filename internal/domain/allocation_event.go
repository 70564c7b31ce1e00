package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AllocationEvent is one entry in the staffing audit trail. EventData holds
// the fields that changed, JSON-encoded.
type AllocationEvent struct {
	EventID      uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	AllocationID uuid.UUID      `gorm:"column:allocation_id;type:uuid;not null;index" json:"allocation_id"`
	EmployeeID   uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	EventType    EventType      `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	EventData    datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (AllocationEvent) TableName() string {
	return "allocation_events"
}

func (e *AllocationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
