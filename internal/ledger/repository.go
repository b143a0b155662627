package ledger

import (
	"context"
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the staff reservation listing.
type ListFilter struct {
	Status     *enums.ReservationStatus
	Department *enums.Department
	Page       pagination.Params
}

// ReservationStore is the persistence surface used by the ledger service.
type ReservationStore interface {
	WithTx(tx *gorm.DB) ReservationStore
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Save(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]ReservationRow, int64, error)
	ListAll(ctx context.Context, filter ListFilter) ([]ReservationRow, int64, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Repository implements ReservationStore on GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a store bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) ReservationStore {
	return &Repository{db: tx}
}

// Create inserts a reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// FindByID loads a reservation.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Save persists the full reservation row.
func (r *Repository) Save(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Save(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

const rowSelect = `reservations.id,
reservations.user_id,
users.full_name AS user_name,
reservations.equipment_id,
equipment.name AS equipment_name,
equipment.category AS equipment_category,
equipment.department AS equipment_department,
reservations.start_date,
reservations.end_date,
reservations.status,
reservations.purpose,
reservations.module_code,
reservations.approved_by,
reservations.return_condition,
reservations.created_at,
reservations.updated_at`

func (r *Repository) rowQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select(rowSelect).
		Joins("JOIN users ON users.id = reservations.user_id").
		Joins("JOIN equipment ON equipment.id = reservations.equipment_id")
}

// ListByUser returns the owner's reservations, newest activity first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]ReservationRow, int64, error) {
	base := r.rowQuery(ctx).Where("reservations.user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := pagination.Normalize(page)
	var rows []ReservationRow
	err := base.
		Order("reservations.updated_at DESC").
		Limit(normalized.Limit).
		Offset(normalized.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns reservations across users, optionally scoped to the
// equipment's department and a status.
func (r *Repository) ListAll(ctx context.Context, filter ListFilter) ([]ReservationRow, int64, error) {
	base := r.rowQuery(ctx)
	if filter.Status != nil && *filter.Status != "" {
		base = base.Where("reservations.status = ?", *filter.Status)
	}
	if filter.Department != nil && *filter.Department != "" {
		base = base.Where("equipment.department = ?", *filter.Department)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := pagination.Normalize(filter.Page)
	var rows []ReservationRow
	err := base.
		Order("reservations.updated_at DESC").
		Limit(normalized.Limit).
		Offset(normalized.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkOverdue flips every non-terminal reservation past its end date to
// Overdue. Safe to run repeatedly.
func (r *Repository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status IN ?", []enums.ReservationStatus{
			enums.ReservationStatusPending,
			enums.ReservationStatusApproved,
			enums.ReservationStatusBorrowed,
		}).
		Where("end_date < ?", now).
		Updates(map[string]any{
			"status":     enums.ReservationStatusOverdue,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
