package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuslabs/labstock-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts are deactivated via
// Status, never removed.
type User struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	FullName     string            `gorm:"column:full_name;not null"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.Role        `gorm:"column:role;type:text;not null"`
	Department   *enums.Department `gorm:"column:department;type:text"`
	StudentID    *string           `gorm:"column:student_id;uniqueIndex"`
	Avatar       *string           `gorm:"column:avatar"`
	Status       enums.UserStatus  `gorm:"column:status;type:text;not null;default:Active"`

	CanBorrow          bool `gorm:"column:can_borrow;not null;default:true"`
	CanReserve         bool `gorm:"column:can_reserve;not null;default:true"`
	CanAccessResources bool `gorm:"column:can_access_resources;not null;default:true"`
	CanViewReports     bool `gorm:"column:can_view_reports;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
