package resources

import (
	"context"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows the resource listing.
type ListFilter struct {
	Category   *string
	Type       *enums.ResourceType
	Department *enums.Department
	Page       pagination.Params
}

// Repository exposes learning resource persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns a page of resources plus the total row count for the filter.
// Essential resources sort first so clients can pin them.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Resource, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Resource{})

	if filter.Category != nil && *filter.Category != "" {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Type != nil && *filter.Type != "" {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Department != nil && *filter.Department != "" {
		query = query.Where("department IN ?", []enums.Department{*filter.Department, enums.DepartmentAll})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := pagination.Normalize(filter.Page)
	var rows []models.Resource
	err := query.
		Order("is_essential DESC, created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new resource row.
func (r *Repository) Create(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// CountAll returns the total number of published resources.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Resource{}).Count(&count).Error
	return count, err
}
