package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuslabs/labstock-backend/pkg/enums"
)

// Resource is a learning material entry; create-only, no edit/delete lifecycle.
type Resource struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title       string             `gorm:"column:title;not null"`
	Type        enums.ResourceType `gorm:"column:type;type:text;not null"`
	URL         string             `gorm:"column:url;not null"`
	Category    *string            `gorm:"column:category"`
	Department  enums.Department   `gorm:"column:department;type:text;not null;default:All"`
	Duration    *string            `gorm:"column:duration"`
	Size        *string            `gorm:"column:size"`
	Thumbnail   *string            `gorm:"column:thumbnail"`
	IsEssential bool               `gorm:"column:is_essential;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Resource) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
