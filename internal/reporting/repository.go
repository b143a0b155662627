package reporting

import (
	"context"
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository runs the read-only aggregate queries behind the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const activitySelect = `reservations.id,
	users.full_name AS user_name,
	equipment.name AS equipment_name,
	reservations.status,
	reservations.start_date,
	reservations.end_date,
	reservations.updated_at`

func (r *Repository) activityQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select(activitySelect).
		Joins("JOIN users ON users.id = reservations.user_id").
		Joins("JOIN equipment ON equipment.id = reservations.equipment_id")
}

// CountEquipment returns the total number of equipment rows.
func (r *Repository) CountEquipment(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Equipment{}).Count(&count).Error
	return count, err
}

// CountUsers returns the total number of user accounts.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountResources returns the total number of published resources.
func (r *Repository) CountResources(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Resource{}).Count(&count).Error
	return count, err
}

// SumAvailable totals the available units across all equipment.
func (r *Repository) SumAvailable(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Select("COALESCE(SUM(available), 0)").
		Scan(&sum).Error
	return sum, err
}

// CountReservationsByStatus counts reservations in the given state.
func (r *Repository) CountReservationsByStatus(ctx context.Context, status enums.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountUserReservationsByStatus counts one user's reservations in the given state.
func (r *Repository) CountUserReservationsByStatus(ctx context.Context, userID uuid.UUID, status enums.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// RecentReservations returns the most recently touched reservations with
// user and equipment names joined in.
func (r *Repository) RecentReservations(ctx context.Context, limit int) ([]ActivityRow, error) {
	var rows []ActivityRow
	err := r.activityQuery(ctx).
		Order("reservations.updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UserActiveReservations returns one user's non-terminal reservations, most
// recently touched first.
func (r *Repository) UserActiveReservations(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityRow, error) {
	active := []enums.ReservationStatus{
		enums.ReservationStatusPending,
		enums.ReservationStatusApproved,
		enums.ReservationStatusBorrowed,
		enums.ReservationStatusOverdue,
	}
	var rows []ActivityRow
	err := r.activityQuery(ctx).
		Where("reservations.user_id = ? AND reservations.status IN ?", userID, active).
		Order("reservations.updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ReservationCreationTimes returns the creation timestamps of reservations
// created at or after the cutoff. Bucketing happens in the service so the
// query stays portable across drivers.
func (r *Repository) ReservationCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error
	return times, err
}

// EquipmentCountByDepartment tallies equipment rows for one department.
func (r *Repository) EquipmentCountByDepartment(ctx context.Context, dept enums.Department) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("department = ?", dept).
		Count(&count).Error
	return count, err
}

// UserCountByRole tallies user accounts for one role.
func (r *Repository) UserCountByRole(ctx context.Context, role enums.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}
