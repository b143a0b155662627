package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/google/uuid"
)

// campusLabsCount is the number of physical labs on campus. It is presentation
// data for the public dashboard, not derived from inventory.
const campusLabsCount = 12

const recentActivityLimit = 5

// Service exposes the dashboard aggregates.
type Service interface {
	Stats(ctx context.Context, actor *policy.Actor) (any, error)
	Reports(ctx context.Context, actor policy.Actor) (*ReportsResponse, error)
}

type statsStore interface {
	CountEquipment(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountResources(ctx context.Context) (int64, error)
	SumAvailable(ctx context.Context) (int64, error)
	CountReservationsByStatus(ctx context.Context, status enums.ReservationStatus) (int64, error)
	CountUserReservationsByStatus(ctx context.Context, userID uuid.UUID, status enums.ReservationStatus) (int64, error)
	RecentReservations(ctx context.Context, limit int) ([]ActivityRow, error)
	UserActiveReservations(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityRow, error)
	ReservationCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)
	EquipmentCountByDepartment(ctx context.Context, dept enums.Department) (int64, error)
	UserCountByRole(ctx context.Context, role enums.Role) (int64, error)
}

type service struct {
	repo statsStore
	now  func() time.Time
}

// NewService constructs a reporting service instance.
func NewService(repo statsStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reporting repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Stats returns the dashboard payload shaped for the caller: institution
// totals for anonymous callers, inventory activity for staff, and the actor's
// own loan counters for borrowers.
func (s *service) Stats(ctx context.Context, actor *policy.Actor) (any, error) {
	if actor == nil {
		return s.publicStats(ctx)
	}
	if actor.IsStaff() {
		return s.staffStats(ctx)
	}
	return s.borrowerStats(ctx, actor.UserID)
}

func (s *service) publicStats(ctx context.Context) (*PublicStats, error) {
	equipment, err := s.repo.CountEquipment(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count equipment")
	}
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	resources, err := s.repo.CountResources(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count resources")
	}
	return &PublicStats{
		TotalEquipment: equipment,
		TotalUsers:     users,
		TotalResources: resources,
		CampusLabs:     campusLabsCount,
	}, nil
}

func (s *service) staffStats(ctx context.Context) (*StaffStats, error) {
	public, err := s.publicStats(ctx)
	if err != nil {
		return nil, err
	}

	available, err := s.repo.SumAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum available")
	}
	activeLoans, err := s.repo.CountReservationsByStatus(ctx, enums.ReservationStatusBorrowed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active loans")
	}
	recent, err := s.repo.RecentReservations(ctx, recentActivityLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recent reservations")
	}

	return &StaffStats{
		PublicStats:        *public,
		AvailableNow:       available,
		ActiveLoans:        activeLoans,
		RecentReservations: recent,
		StockStatus: []StockSlice{
			{Name: string(enums.EquipmentStatusAvailable), Value: available},
			{Name: string(enums.ReservationStatusBorrowed), Value: activeLoans},
		},
	}, nil
}

func (s *service) borrowerStats(ctx context.Context, userID uuid.UUID) (*BorrowerStats, error) {
	stats := &BorrowerStats{}
	counters := []struct {
		status enums.ReservationStatus
		target *int64
	}{
		{enums.ReservationStatusBorrowed, &stats.Borrowed},
		{enums.ReservationStatusPending, &stats.Pending},
		{enums.ReservationStatusOverdue, &stats.Overdue},
	}
	for _, counter := range counters {
		count, err := s.repo.CountUserReservationsByStatus(ctx, userID, counter.status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count own reservations")
		}
		*counter.target = count
	}

	active, err := s.repo.UserActiveReservations(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "own active reservations")
	}
	stats.ActiveReservations = active
	return stats, nil
}

// Reports builds the institution report for admin and HOD dashboards.
func (s *service) Reports(ctx context.Context, actor policy.Actor) (*ReportsResponse, error) {
	if err := policy.Require(actor, policy.CapInstitutionReports); err != nil {
		return nil, err
	}

	weekly, err := s.weeklyActivity(ctx)
	if err != nil {
		return nil, err
	}

	departments := enums.Departments()
	deptDist := make([]DepartmentCount, 0, len(departments))
	for _, dept := range departments {
		count, err := s.repo.EquipmentCountByDepartment(ctx, dept)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "equipment by department")
		}
		deptDist = append(deptDist, DepartmentCount{Department: dept, Count: count})
	}

	roles := enums.Roles()
	roleDist := make([]RoleCount, 0, len(roles))
	for _, role := range roles {
		count, err := s.repo.UserCountByRole(ctx, role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "users by role")
		}
		roleDist = append(roleDist, RoleCount{Role: role, Count: count})
	}

	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	equipment, err := s.repo.CountEquipment(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count equipment")
	}
	activeLoans, err := s.repo.CountReservationsByStatus(ctx, enums.ReservationStatusBorrowed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active loans")
	}
	pending, err := s.repo.CountReservationsByStatus(ctx, enums.ReservationStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending requests")
	}

	return &ReportsResponse{
		WeeklyActivity:         weekly,
		DepartmentDistribution: deptDist,
		RoleDistribution:       roleDist,
		Totals: ReportTotals{
			Users:           users,
			Equipment:       equipment,
			ActiveLoans:     activeLoans,
			PendingRequests: pending,
		},
	}, nil
}

// weeklyActivity buckets reservation creations per UTC day for the last seven
// days, pairing each day with the same weekday one week earlier.
func (s *service) weeklyActivity(ctx context.Context) ([]WeeklyActivityPoint, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -13)

	times, err := s.repo.ReservationCreationTimes(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reservation creation times")
	}

	perDay := make(map[string]int64, 14)
	for _, created := range times {
		perDay[created.UTC().Format("2006-01-02")]++
	}

	points := make([]WeeklyActivityPoint, 0, 7)
	for offset := -6; offset <= 0; offset++ {
		day := today.AddDate(0, 0, offset)
		previous := day.AddDate(0, 0, -7)
		points = append(points, WeeklyActivityPoint{
			Date:         day.Format("2006-01-02"),
			Day:          day.Format("Mon"),
			Count:        perDay[day.Format("2006-01-02")],
			PreviousWeek: perDay[previous.Format("2006-01-02")],
		})
	}
	return points, nil
}
