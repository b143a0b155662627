package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubStore struct {
	equipment  int64
	users      int64
	resources  int64
	available  int64
	byStatus   map[enums.ReservationStatus]int64
	userCounts map[enums.ReservationStatus]int64
	recent     []ActivityRow
	userActive []ActivityRow
	created    []time.Time
	byDept     map[enums.Department]int64
	byRole     map[enums.Role]int64
}

func (s *stubStore) CountEquipment(ctx context.Context) (int64, error) { return s.equipment, nil }
func (s *stubStore) CountUsers(ctx context.Context) (int64, error)     { return s.users, nil }
func (s *stubStore) CountResources(ctx context.Context) (int64, error) { return s.resources, nil }
func (s *stubStore) SumAvailable(ctx context.Context) (int64, error)   { return s.available, nil }

func (s *stubStore) CountReservationsByStatus(ctx context.Context, status enums.ReservationStatus) (int64, error) {
	return s.byStatus[status], nil
}

func (s *stubStore) CountUserReservationsByStatus(ctx context.Context, userID uuid.UUID, status enums.ReservationStatus) (int64, error) {
	return s.userCounts[status], nil
}

func (s *stubStore) RecentReservations(ctx context.Context, limit int) ([]ActivityRow, error) {
	return s.recent, nil
}

func (s *stubStore) UserActiveReservations(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityRow, error) {
	return s.userActive, nil
}

func (s *stubStore) ReservationCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	out := make([]time.Time, 0, len(s.created))
	for _, created := range s.created {
		if !created.Before(since) {
			out = append(out, created)
		}
	}
	return out, nil
}

func (s *stubStore) EquipmentCountByDepartment(ctx context.Context, dept enums.Department) (int64, error) {
	return s.byDept[dept], nil
}

func (s *stubStore) UserCountByRole(ctx context.Context, role enums.Role) (int64, error) {
	return s.byRole[role], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStatsPublicShape(t *testing.T) {
	store := &stubStore{equipment: 40, users: 120, resources: 9}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	payload, err := svc.Stats(context.Background(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	public, ok := payload.(*PublicStats)
	if !ok {
		t.Fatalf("expected public stats, got %T", payload)
	}
	if public.TotalEquipment != 40 || public.TotalUsers != 120 || public.TotalResources != 9 {
		t.Fatalf("unexpected totals: %+v", public)
	}
	if public.CampusLabs != campusLabsCount {
		t.Fatalf("expected %d campus labs, got %d", campusLabsCount, public.CampusLabs)
	}
}

func TestStatsStaffShape(t *testing.T) {
	store := &stubStore{
		equipment: 40,
		users:     120,
		resources: 9,
		available: 31,
		byStatus:  map[enums.ReservationStatus]int64{enums.ReservationStatusBorrowed: 6},
		recent:    []ActivityRow{{UserName: "A Student", EquipmentName: "Oscilloscope"}},
	}
	svc, _ := NewService(store)
	dept := enums.DepartmentICT
	actor := policy.Actor{UserID: uuid.New(), Role: enums.RoleLabStaff, Department: &dept}

	payload, err := svc.Stats(context.Background(), &actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	staff, ok := payload.(*StaffStats)
	if !ok {
		t.Fatalf("expected staff stats, got %T", payload)
	}
	if staff.AvailableNow != 31 || staff.ActiveLoans != 6 {
		t.Fatalf("unexpected activity figures: %+v", staff)
	}
	if len(staff.RecentReservations) != 1 {
		t.Fatalf("expected recent feed, got %d rows", len(staff.RecentReservations))
	}
	if len(staff.StockStatus) != 2 || staff.StockStatus[0].Value != 31 || staff.StockStatus[1].Value != 6 {
		t.Fatalf("unexpected stock slices: %+v", staff.StockStatus)
	}
}

func TestStatsBorrowerShape(t *testing.T) {
	store := &stubStore{
		userCounts: map[enums.ReservationStatus]int64{
			enums.ReservationStatusBorrowed: 2,
			enums.ReservationStatusPending:  1,
			enums.ReservationStatusOverdue:  1,
		},
		userActive: []ActivityRow{{EquipmentName: "Multimeter"}},
	}
	svc, _ := NewService(store)
	actor := policy.Actor{UserID: uuid.New(), Role: enums.RoleStudent}

	payload, err := svc.Stats(context.Background(), &actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	borrower, ok := payload.(*BorrowerStats)
	if !ok {
		t.Fatalf("expected borrower stats, got %T", payload)
	}
	if borrower.Borrowed != 2 || borrower.Pending != 1 || borrower.Overdue != 1 {
		t.Fatalf("unexpected counters: %+v", borrower)
	}
	if len(borrower.ActiveReservations) != 1 {
		t.Fatalf("expected active feed, got %d rows", len(borrower.ActiveReservations))
	}
}

func TestReportsRequiresInstitutionCapability(t *testing.T) {
	svc, _ := NewService(&stubStore{})
	dept := enums.DepartmentICT
	staff := policy.Actor{UserID: uuid.New(), Role: enums.RoleLabStaff, Department: &dept}

	_, err := svc.Reports(context.Background(), staff)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	hod := policy.Actor{UserID: uuid.New(), Role: enums.RoleHOD, Department: &dept}
	if _, err := svc.Reports(context.Background(), hod); err != nil {
		t.Fatalf("HOD reports: %v", err)
	}
}

func TestReportsWeeklyActivityComparesPriorWeek(t *testing.T) {
	today := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	store := &stubStore{
		created: []time.Time{
			today.Add(-2 * time.Hour),
			today.Add(-3 * time.Hour),
			today.AddDate(0, 0, -7).Add(-1 * time.Hour),
			today.AddDate(0, 0, -3),
			today.AddDate(0, 0, -20),
		},
	}
	svc := &service{repo: store, now: fixedClock(today)}
	admin := policy.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	report, err := svc.Reports(context.Background(), admin)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(report.WeeklyActivity) != 7 {
		t.Fatalf("expected 7 points, got %d", len(report.WeeklyActivity))
	}

	last := report.WeeklyActivity[6]
	if last.Date != "2026-03-14" || last.Day != "Sat" {
		t.Fatalf("unexpected final point: %+v", last)
	}
	if last.Count != 2 {
		t.Fatalf("expected 2 reservations today, got %d", last.Count)
	}
	if last.PreviousWeek != 1 {
		t.Fatalf("expected 1 reservation same weekday last week, got %d", last.PreviousWeek)
	}

	fourth := report.WeeklyActivity[3]
	if fourth.Date != "2026-03-11" || fourth.Count != 1 {
		t.Fatalf("unexpected midweek point: %+v", fourth)
	}
}

func TestReportsDistributionsAndTotals(t *testing.T) {
	store := &stubStore{
		users:     50,
		equipment: 30,
		byStatus: map[enums.ReservationStatus]int64{
			enums.ReservationStatusBorrowed: 4,
			enums.ReservationStatusPending:  3,
		},
		byDept: map[enums.Department]int64{
			enums.DepartmentICT:         12,
			enums.DepartmentMechatronic: 8,
		},
		byRole: map[enums.Role]int64{
			enums.RoleStudent: 40,
			enums.RoleAdmin:   1,
		},
	}
	svc, _ := NewService(store)
	admin := policy.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	report, err := svc.Reports(context.Background(), admin)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(report.DepartmentDistribution) != len(enums.Departments()) {
		t.Fatalf("expected a slice per department, got %d", len(report.DepartmentDistribution))
	}
	if len(report.RoleDistribution) != len(enums.Roles()) {
		t.Fatalf("expected a slice per role, got %d", len(report.RoleDistribution))
	}
	for _, slice := range report.DepartmentDistribution {
		if slice.Department == enums.DepartmentICT && slice.Count != 12 {
			t.Fatalf("expected ICT count 12, got %d", slice.Count)
		}
	}
	totals := report.Totals
	if totals.Users != 50 || totals.Equipment != 30 || totals.ActiveLoans != 4 || totals.PendingRequests != 3 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
