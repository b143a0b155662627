package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/campuslabs/labstock-backend/pkg/enums"
)

// Equipment is a catalog item. Available is the single source of truth for
// borrowability and is mutated only through reservation transitions.
type Equipment struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name       string                `gorm:"column:name;not null"`
	Category   string                `gorm:"column:category;not null"`
	Department *enums.Department     `gorm:"column:department;type:text"`
	Status     enums.EquipmentStatus `gorm:"column:status;type:text;not null;default:Available"`
	Stock      int                   `gorm:"column:stock;not null;default:1"`
	Available  int                   `gorm:"column:available;not null;default:1"`

	ModelNumber         *string        `gorm:"column:model_number"`
	SerialNumber        *string        `gorm:"column:serial_number"`
	AssetTag            *string        `gorm:"column:asset_tag"`
	Description         *string        `gorm:"column:description;type:text"`
	PurchaseDate        *time.Time     `gorm:"column:purchase_date"`
	WarrantyExpiry      *time.Time     `gorm:"column:warranty_expiry"`
	Cost                *float64       `gorm:"column:cost;type:numeric(10,2)"`
	Supplier            *string        `gorm:"column:supplier"`
	Location            *string        `gorm:"column:location"`
	RequiresMaintenance bool           `gorm:"column:requires_maintenance;not null;default:false"`
	AllowOvernight      bool           `gorm:"column:allow_overnight;not null;default:false"`
	Image               *string        `gorm:"column:image"`
	GalleryImages       pq.StringArray `gorm:"column:gallery_images;type:text"`
	VideoURLs           pq.StringArray `gorm:"column:video_urls;type:text"`
	ManualURL           *string        `gorm:"column:manual_url"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Equipment) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Equipment) TableName() string {
	return "equipment"
}
