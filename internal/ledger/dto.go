package ledger

import (
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ReservationRow is the denormalized read projection for reservation listings.
// The ledger table itself stays normalized; names are joined at query time.
type ReservationRow struct {
	ID                  uuid.UUID               `json:"id"`
	UserID              uuid.UUID               `json:"user_id"`
	UserName            string                  `json:"user_name"`
	EquipmentID         uuid.UUID               `json:"equipment_id"`
	EquipmentName       string                  `json:"equipment_name"`
	EquipmentCategory   string                  `json:"equipment_category"`
	EquipmentDepartment *enums.Department       `json:"equipment_department,omitempty"`
	StartDate           time.Time               `json:"start_date"`
	EndDate             time.Time               `json:"end_date"`
	Status              enums.ReservationStatus `json:"status"`
	Purpose             *string                 `json:"purpose,omitempty"`
	ModuleCode          *string                 `json:"module_code,omitempty"`
	ApprovedBy          *uuid.UUID              `json:"approved_by,omitempty"`
	ReturnCondition     *string                 `json:"return_condition,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// ListResult bundles a reservation page with pagination metadata.
type ListResult struct {
	Reservations []ReservationRow `json:"reservations"`
	Meta         pagination.Meta  `json:"meta"`
}

// CreateInput is the validated payload for a new reservation request.
type CreateInput struct {
	EquipmentID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Purpose     *string
	ModuleCode  *string
}

// ReservationDTO is the single-row response shape for lifecycle operations.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	EquipmentID     uuid.UUID               `json:"equipment_id"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         time.Time               `json:"end_date"`
	Status          enums.ReservationStatus `json:"status"`
	Purpose         *string                 `json:"purpose,omitempty"`
	ModuleCode      *string                 `json:"module_code,omitempty"`
	ApprovedBy      *uuid.UUID              `json:"approved_by,omitempty"`
	ReturnCondition *string                 `json:"return_condition,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FromModel converts the persisted reservation into its DTO.
func FromModel(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:              r.ID,
		UserID:          r.UserID,
		EquipmentID:     r.EquipmentID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Status:          r.Status,
		Purpose:         r.Purpose,
		ModuleCode:      r.ModuleCode,
		ApprovedBy:      r.ApprovedBy,
		ReturnCondition: r.ReturnCondition,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
