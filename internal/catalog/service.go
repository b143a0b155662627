package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes equipment catalog operations.
type Service interface {
	List(ctx context.Context, actor *policy.Actor, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*EquipmentDTO, error)
	Create(ctx context.Context, actor policy.Actor, input CreateInput) (*EquipmentDTO, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*EquipmentDTO, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

// ListInput holds the catalog listing filters.
type ListInput struct {
	Category   *string
	Status     *enums.EquipmentStatus
	Department *enums.Department
	Search     *string
	Page       pagination.Params
}

// CreateInput holds the validated payload to register equipment.
type CreateInput struct {
	Name                string
	Category            string
	Department          *enums.Department
	Stock               *int
	Available           *int
	ModelNumber         *string
	SerialNumber        *string
	AssetTag            *string
	Description         *string
	PurchaseDate        *time.Time
	WarrantyExpiry      *time.Time
	Cost                *float64
	Supplier            *string
	Location            *string
	RequiresMaintenance *bool
	AllowOvernight      *bool
	Image               *string
	GalleryImages       []string
	VideoURLs           []string
	ManualURL           *string
}

// UpdateInput holds optional mutation values for equipment.
type UpdateInput struct {
	Name                *string
	Category            *string
	Department          *enums.Department
	Status              *enums.EquipmentStatus
	Stock               *int
	Available           *int
	ModelNumber         *string
	SerialNumber        *string
	AssetTag            *string
	Description         *string
	PurchaseDate        *time.Time
	WarrantyExpiry      *time.Time
	Cost                *float64
	Supplier            *string
	Location            *string
	RequiresMaintenance *bool
	AllowOvernight      *bool
	Image               *string
	GalleryImages       *[]string
	VideoURLs           *[]string
	ManualURL           *string
}

type equipmentRepo interface {
	List(ctx context.Context, filter ListFilter) ([]models.Equipment, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	Create(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error)
	Save(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo equipmentRepo
}

// NewService constructs a catalog service instance.
func NewService(repo equipmentRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	return &service{repo: repo}, nil
}

// List returns a filtered equipment page. Department-scoped staff always see
// their own department regardless of the requested filter.
func (s *service) List(ctx context.Context, actor *policy.Actor, input ListInput) (*ListResult, error) {
	filter := ListFilter{
		Category: input.Category,
		Status:   input.Status,
		Search:   input.Search,
		Page:     input.Page,
	}

	filter.Department = input.Department
	if actor != nil {
		if scope := policy.DepartmentScope(*actor); scope != nil {
			filter.Department = scope
		}
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing equipment")
	}

	return &ListResult{
		Equipment: fromModels(rows),
		Meta:      pagination.BuildMeta(input.Page, total),
	}, nil
}

// Get loads a single equipment item.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*EquipmentDTO, error) {
	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment")
	}
	return FromModel(equipment), nil
}

// Create registers a new equipment item owned by the actor's department when scoped.
func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*EquipmentDTO, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and category are required")
	}
	if input.Department != nil && !input.Department.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
	}

	dept := policy.ForceDepartment(actor, input.Department)

	stock := 1
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		stock = *input.Stock
	}

	// Callers may register items with some units already on loan.
	available := stock
	if input.Available != nil {
		if *input.Available < 0 || *input.Available > stock {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "available must be between 0 and stock")
		}
		available = *input.Available
	}

	equipment := &models.Equipment{
		Name:           strings.TrimSpace(input.Name),
		Category:       strings.TrimSpace(input.Category),
		Department:     dept,
		Status:         enums.EquipmentStatusAvailable,
		Stock:          stock,
		Available:      available,
		ModelNumber:    input.ModelNumber,
		SerialNumber:   input.SerialNumber,
		AssetTag:       input.AssetTag,
		Description:    input.Description,
		PurchaseDate:   input.PurchaseDate,
		WarrantyExpiry: input.WarrantyExpiry,
		Cost:           input.Cost,
		Supplier:       input.Supplier,
		Location:       input.Location,
		Image:          input.Image,
		GalleryImages:  input.GalleryImages,
		VideoURLs:      input.VideoURLs,
		ManualURL:      input.ManualURL,
	}
	if input.RequiresMaintenance != nil {
		equipment.RequiresMaintenance = *input.RequiresMaintenance
	}
	if input.AllowOvernight != nil {
		equipment.AllowOvernight = *input.AllowOvernight
	}

	created, err := s.repo.Create(ctx, equipment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating equipment")
	}
	return FromModel(created), nil
}

// Update merges the provided fields into the equipment row.
func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*EquipmentDTO, error) {
	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment")
	}

	if err := policy.RequireDepartment(actor, equipment.Department); err != nil {
		return nil, err
	}

	applyUpdate(equipment, input)
	equipment.Department = policy.ForceDepartment(actor, equipment.Department)

	if equipment.Stock < 0 || equipment.Available < 0 || equipment.Available > equipment.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available must be between 0 and stock")
	}

	saved, err := s.repo.Save(ctx, equipment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating equipment")
	}
	return FromModel(saved), nil
}

// Delete removes an equipment item. Only holders of the global management
// capability may delete, and a missing row is reported as NotFound.
func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := policy.Require(actor, policy.CapManageAllDepartments); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting equipment")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return nil
}

func applyUpdate(equipment *models.Equipment, input UpdateInput) {
	if input.Name != nil {
		equipment.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		equipment.Category = strings.TrimSpace(*input.Category)
	}
	if input.Department != nil {
		equipment.Department = input.Department
	}
	if input.Status != nil {
		equipment.Status = *input.Status
	}
	if input.Stock != nil {
		equipment.Stock = *input.Stock
	}
	if input.Available != nil {
		equipment.Available = *input.Available
	}
	if input.ModelNumber != nil {
		equipment.ModelNumber = input.ModelNumber
	}
	if input.SerialNumber != nil {
		equipment.SerialNumber = input.SerialNumber
	}
	if input.AssetTag != nil {
		equipment.AssetTag = input.AssetTag
	}
	if input.Description != nil {
		equipment.Description = input.Description
	}
	if input.PurchaseDate != nil {
		equipment.PurchaseDate = input.PurchaseDate
	}
	if input.WarrantyExpiry != nil {
		equipment.WarrantyExpiry = input.WarrantyExpiry
	}
	if input.Cost != nil {
		equipment.Cost = input.Cost
	}
	if input.Supplier != nil {
		equipment.Supplier = input.Supplier
	}
	if input.Location != nil {
		equipment.Location = input.Location
	}
	if input.RequiresMaintenance != nil {
		equipment.RequiresMaintenance = *input.RequiresMaintenance
	}
	if input.AllowOvernight != nil {
		equipment.AllowOvernight = *input.AllowOvernight
	}
	if input.Image != nil {
		equipment.Image = input.Image
	}
	if input.GalleryImages != nil {
		equipment.GalleryImages = *input.GalleryImages
	}
	if input.VideoURLs != nil {
		equipment.VideoURLs = *input.VideoURLs
	}
	if input.ManualURL != nil {
		equipment.ManualURL = input.ManualURL
	}
}
