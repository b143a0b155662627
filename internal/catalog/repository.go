package catalog

import (
	"context"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the equipment listing.
type ListFilter struct {
	Category   *string
	Status     *enums.EquipmentStatus
	Department *enums.Department
	Search     *string
	Page       pagination.Params
}

// Repository exposes equipment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns a page of equipment plus the total row count for the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Equipment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Equipment{})

	if filter.Category != nil && *filter.Category != "" {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil && *filter.Status != "" {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Department != nil && *filter.Department != "" {
		query = query.Where("department = ?", *filter.Department)
	}
	if filter.Search != nil && *filter.Search != "" {
		like := "%" + *filter.Search + "%"
		query = query.Where("name LIKE ? OR category LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := pagination.Normalize(filter.Page)
	var rows []models.Equipment
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads a single equipment row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := r.db.WithContext(ctx).First(&equipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

// Create inserts the equipment row.
func (r *Repository) Create(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error) {
	if err := r.db.WithContext(ctx).Create(equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

// Save persists the full equipment row.
func (r *Repository) Save(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error) {
	if err := r.db.WithContext(ctx).Save(equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

// Delete removes the equipment row, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementAvailable atomically takes one unit if any remain. The conditional
// WHERE clause is the concurrency guard for simultaneous approvals.
func (r *Repository) DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ? AND available > 0", id).
		UpdateColumn("available", gorm.Expr("available - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementAvailable returns one unit to stock, never exceeding the total.
func (r *Repository) IncrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ? AND available < stock", id).
		UpdateColumn("available", gorm.Expr("available + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkInUseIfDepleted flips the status to In Use only when no units remain.
// The check runs in SQL so concurrent approvals decide on the stored count,
// not a row read before the transaction.
func (r *Repository) MarkInUseIfDepleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ? AND available = 0", id).
		UpdateColumn("status", enums.EquipmentStatusInUse).Error
}

// SetStatus updates only the status column.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
