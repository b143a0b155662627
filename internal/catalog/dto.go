package catalog

import (
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
)

// EquipmentDTO is the transport shape for a catalog item.
type EquipmentDTO struct {
	ID                  uuid.UUID              `json:"id"`
	Name                string                 `json:"name"`
	Category            string                 `json:"category"`
	Department          *enums.Department      `json:"department,omitempty"`
	Status              enums.EquipmentStatus  `json:"status"`
	Stock               int                    `json:"stock"`
	Available           int                    `json:"available"`
	ModelNumber         *string                `json:"model_number,omitempty"`
	SerialNumber        *string                `json:"serial_number,omitempty"`
	AssetTag            *string                `json:"asset_tag,omitempty"`
	Description         *string                `json:"description,omitempty"`
	PurchaseDate        *time.Time             `json:"purchase_date,omitempty"`
	WarrantyExpiry      *time.Time             `json:"warranty_expiry,omitempty"`
	Cost                *float64               `json:"cost,omitempty"`
	Supplier            *string                `json:"supplier,omitempty"`
	Location            *string                `json:"location,omitempty"`
	RequiresMaintenance bool                   `json:"requires_maintenance"`
	AllowOvernight      bool                   `json:"allow_overnight"`
	Image               *string                `json:"image,omitempty"`
	GalleryImages       []string               `json:"gallery_images,omitempty"`
	VideoURLs           []string               `json:"video_urls,omitempty"`
	ManualURL           *string                `json:"manual_url,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// ListResult bundles a page of equipment with its pagination metadata.
type ListResult struct {
	Equipment []EquipmentDTO  `json:"equipment"`
	Meta      pagination.Meta `json:"meta"`
}

// FromModel converts the persisted equipment row into its DTO.
func FromModel(e *models.Equipment) *EquipmentDTO {
	if e == nil {
		return nil
	}
	return &EquipmentDTO{
		ID:                  e.ID,
		Name:                e.Name,
		Category:            e.Category,
		Department:          e.Department,
		Status:              e.Status,
		Stock:               e.Stock,
		Available:           e.Available,
		ModelNumber:         e.ModelNumber,
		SerialNumber:        e.SerialNumber,
		AssetTag:            e.AssetTag,
		Description:         e.Description,
		PurchaseDate:        e.PurchaseDate,
		WarrantyExpiry:      e.WarrantyExpiry,
		Cost:                e.Cost,
		Supplier:            e.Supplier,
		Location:            e.Location,
		RequiresMaintenance: e.RequiresMaintenance,
		AllowOvernight:      e.AllowOvernight,
		Image:               e.Image,
		GalleryImages:       append([]string(nil), e.GalleryImages...),
		VideoURLs:           append([]string(nil), e.VideoURLs...),
		ManualURL:           e.ManualURL,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func fromModels(rows []models.Equipment) []EquipmentDTO {
	out := make([]EquipmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
