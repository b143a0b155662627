package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuslabs/labstock-backend/pkg/enums"
)

// Reservation is a request-to-borrow ledger entry. Rows are never deleted;
// lifecycle ends in a terminal status.
type Reservation struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	EquipmentID uuid.UUID               `gorm:"column:equipment_id;type:uuid;not null;index"`
	StartDate   time.Time               `gorm:"column:start_date;not null"`
	EndDate     time.Time               `gorm:"column:end_date;not null"`
	Status      enums.ReservationStatus `gorm:"column:status;type:text;not null;default:Pending;index"`
	Purpose     *string                 `gorm:"column:purpose"`
	ModuleCode  *string                 `gorm:"column:module_code"`

	// ApprovedBy doubles as the marker that stock was decremented for this row.
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ReturnCondition *string    `gorm:"column:return_condition"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;index"`
}

func (r *Reservation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
