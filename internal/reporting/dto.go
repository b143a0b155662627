package reporting

import (
	"time"

	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/google/uuid"
)

// PublicStats are the institution-wide totals visible without authentication.
type PublicStats struct {
	TotalEquipment int64 `json:"total_equipment"`
	TotalUsers     int64 `json:"total_users"`
	TotalResources int64 `json:"total_resources"`
	CampusLabs     int64 `json:"campus_labs"`
}

// ActivityRow is a denormalized reservation line for dashboard feeds.
type ActivityRow struct {
	ID            uuid.UUID               `json:"id"`
	UserName      string                  `json:"user_name"`
	EquipmentName string                  `json:"equipment_name"`
	Status        enums.ReservationStatus `json:"status"`
	StartDate     time.Time               `json:"start_date"`
	EndDate       time.Time               `json:"end_date"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// StockSlice is one segment of the stock-status chart.
type StockSlice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// StaffStats extends the public totals with live inventory activity.
type StaffStats struct {
	PublicStats
	AvailableNow       int64         `json:"available_now"`
	ActiveLoans        int64         `json:"active_loans"`
	RecentReservations []ActivityRow `json:"recent_reservations"`
	StockStatus        []StockSlice  `json:"stock_status"`
}

// BorrowerStats scopes the dashboard to the actor's own reservations.
type BorrowerStats struct {
	Borrowed           int64         `json:"borrowed"`
	Pending            int64         `json:"pending"`
	Overdue            int64         `json:"overdue"`
	ActiveReservations []ActivityRow `json:"active_reservations"`
}

// WeeklyActivityPoint compares one of the last seven days against the same
// weekday one week earlier.
type WeeklyActivityPoint struct {
	Date         string `json:"date"`
	Day          string `json:"day"`
	Count        int64  `json:"count"`
	PreviousWeek int64  `json:"previous_week"`
}

// DepartmentCount is the equipment tally for one department.
type DepartmentCount struct {
	Department enums.Department `json:"department"`
	Count      int64            `json:"count"`
}

// RoleCount is the user tally for one role.
type RoleCount struct {
	Role  enums.Role `json:"role"`
	Count int64      `json:"count"`
}

// ReportTotals are the headline figures of the institution report.
type ReportTotals struct {
	Users           int64 `json:"users"`
	Equipment       int64 `json:"equipment"`
	ActiveLoans     int64 `json:"active_loans"`
	PendingRequests int64 `json:"pending_requests"`
}

// ReportsResponse is the admin/HOD institution report.
type ReportsResponse struct {
	WeeklyActivity         []WeeklyActivityPoint `json:"weekly_activity"`
	DepartmentDistribution []DepartmentCount     `json:"department_distribution"`
	RoleDistribution       []RoleCount           `json:"role_distribution"`
	Totals                 ReportTotals          `json:"totals"`
}
