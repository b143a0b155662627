package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/auth"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubReservations struct {
	byID      map[uuid.UUID]*models.Reservation
	created   *models.Reservation
	saved     *models.Reservation
	listAll   ListFilter
	listRows  []ReservationRow
	listTotal int64
}

func newStubReservations() *stubReservations {
	return &stubReservations{byID: map[uuid.UUID]*models.Reservation{}}
}

func (s *stubReservations) WithTx(tx *gorm.DB) ReservationStore { return s }

func (s *stubReservations) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.created = r
	s.byID[r.ID] = r
	return r, nil
}

func (s *stubReservations) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *stubReservations) Save(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	s.saved = r
	s.byID[r.ID] = r
	return r, nil
}

func (s *stubReservations) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]ReservationRow, int64, error) {
	return s.listRows, s.listTotal, nil
}

func (s *stubReservations) ListAll(ctx context.Context, filter ListFilter) ([]ReservationRow, int64, error) {
	s.listAll = filter
	return s.listRows, s.listTotal, nil
}

func (s *stubReservations) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubEquipment struct {
	byID          map[uuid.UUID]*models.Equipment
	statusSet     map[uuid.UUID]enums.EquipmentStatus
	decrementOK   bool
	decrements    int
	incrementOK   bool
	increments    int
	readAvailable *int
}

func newStubEquipment() *stubEquipment {
	return &stubEquipment{
		byID:        map[uuid.UUID]*models.Equipment{},
		statusSet:   map[uuid.UUID]enums.EquipmentStatus{},
		decrementOK: true,
		incrementOK: true,
	}
}

func (s *stubEquipment) WithTx(tx *gorm.DB) EquipmentStore { return s }

func (s *stubEquipment) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *e
	if s.readAvailable != nil {
		copied.Available = *s.readAvailable
	}
	return &copied, nil
}

func (s *stubEquipment) DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	if !s.decrementOK {
		return false, nil
	}
	s.decrements++
	s.byID[id].Available--
	return true, nil
}

func (s *stubEquipment) IncrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	if !s.incrementOK {
		return false, nil
	}
	s.increments++
	s.byID[id].Available++
	return true, nil
}

func (s *stubEquipment) MarkInUseIfDepleted(ctx context.Context, id uuid.UUID) error {
	if s.byID[id].Available == 0 {
		s.statusSet[id] = enums.EquipmentStatusInUse
		s.byID[id].Status = enums.EquipmentStatusInUse
	}
	return nil
}

func (s *stubEquipment) SetStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) error {
	s.statusSet[id] = status
	s.byID[id].Status = status
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func deptPtr(d enums.Department) *enums.Department { return &d }

func borrower() policy.Actor {
	return policy.Actor{
		UserID: uuid.New(),
		Role:   enums.RoleStudent,
		Permissions: auth.Permissions{
			CanBorrow:          true,
			CanReserve:         true,
			CanAccessResources: true,
		},
	}
}

func staffFor(dept enums.Department) policy.Actor {
	return policy.Actor{UserID: uuid.New(), Role: enums.RoleLabStaff, Department: deptPtr(dept)}
}

func adminActor() policy.Actor {
	return policy.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func newFixture(t *testing.T, available, stock int) (Service, *stubReservations, *stubEquipment, *models.Equipment) {
	t.Helper()
	reservations := newStubReservations()
	equipmentStore := newStubEquipment()
	dept := enums.DepartmentICT
	equipment := &models.Equipment{
		ID:         uuid.New(),
		Name:       "Oscilloscope",
		Category:   "Bench",
		Department: &dept,
		Status:     enums.EquipmentStatusAvailable,
		Stock:      stock,
		Available:  available,
	}
	equipmentStore.byID[equipment.ID] = equipment

	svc, err := NewService(reservations, equipmentStore, stubTx{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, reservations, equipmentStore, equipment
}

func pendingReservation(reservations *stubReservations, userID, equipmentID uuid.UUID) *models.Reservation {
	r := &models.Reservation{
		ID:          uuid.New(),
		UserID:      userID,
		EquipmentID: equipmentID,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(48 * time.Hour),
		Status:      enums.ReservationStatusPending,
	}
	reservations.byID[r.ID] = r
	return r
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCreatePendingReservation(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	actor := borrower()

	created, err := svc.Create(context.Background(), actor, CreateInput{
		EquipmentID: equipment.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != enums.ReservationStatusPending {
		t.Fatalf("expected Pending, got %s", created.Status)
	}
	if reservations.created == nil {
		t.Fatal("reservation not persisted")
	}
}

func TestCreateRejectsZeroStock(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 0, 1)

	_, err := svc.Create(context.Background(), borrower(), CreateInput{
		EquipmentID: equipment.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(24 * time.Hour),
	})
	expectCode(t, err, pkgerrors.CodeConflict)
	if reservations.created != nil {
		t.Fatal("no reservation record should be created")
	}
}

func TestCreateRejectsRevokedBorrowFlag(t *testing.T) {
	svc, _, _, equipment := newFixture(t, 1, 1)
	actor := borrower()
	actor.Permissions.CanBorrow = false

	_, err := svc.Create(context.Background(), actor, CreateInput{
		EquipmentID: equipment.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(24 * time.Hour),
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	svc, _, _, equipment := newFixture(t, 1, 1)

	_, err := svc.Create(context.Background(), borrower(), CreateInput{
		EquipmentID: equipment.ID,
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now(),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestApproveDecrementsStockAndRecordsApprover(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 2, 2)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	staff := staffFor(enums.DepartmentICT)

	approved, err := svc.Approve(context.Background(), staff, r.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.ReservationStatusApproved {
		t.Fatalf("expected Approved, got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != staff.UserID {
		t.Fatal("approver not recorded")
	}
	if equipmentStore.decrements != 1 {
		t.Fatalf("expected one decrement, got %d", equipmentStore.decrements)
	}
	if _, flipped := equipmentStore.statusSet[equipment.ID]; flipped {
		t.Fatal("status must not flip while units remain")
	}
}

func TestApproveLastUnitFlipsStatusToInUse(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	if _, err := svc.Approve(context.Background(), adminActor(), r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := equipmentStore.statusSet[equipment.ID]; got != enums.EquipmentStatusInUse {
		t.Fatalf("expected In Use after last unit, got %s", got)
	}
}

func TestApproveFlipUsesStoredCountNotPriorRead(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 2)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	// a concurrent approval already took a unit after our row read
	stale := 2
	equipmentStore.readAvailable = &stale

	if _, err := svc.Approve(context.Background(), staffFor(enums.DepartmentICT), r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := equipmentStore.statusSet[equipment.ID]; got != enums.EquipmentStatusInUse {
		t.Fatalf("expected In Use once the last unit is taken, got %s", got)
	}
}

func TestApproveRaceSecondApprovalGetsConflict(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	first := pendingReservation(reservations, owner.UserID, equipment.ID)
	second := pendingReservation(reservations, owner.UserID, equipment.ID)
	staff := staffFor(enums.DepartmentICT)

	if _, err := svc.Approve(context.Background(), staff, first.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	// the conditional update finds no unit left
	equipmentStore.decrementOK = false
	_, err := svc.Approve(context.Background(), staff, second.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestApproveCrossDepartmentDeniedAdminAllowed(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	outsider := staffFor(enums.DepartmentMechatronic)
	_, err := svc.Approve(context.Background(), outsider, r.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)

	if _, err := svc.Approve(context.Background(), adminActor(), r.ID); err != nil {
		t.Fatalf("admin approve: %v", err)
	}
}

func TestFullLoanLifecycleRestocksOnReturn(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	staff := staffFor(enums.DepartmentICT)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, staff, r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Issue(ctx, staff, r.ID); err != nil {
		t.Fatalf("issue: %v", err)
	}

	condition := "minor scratches"
	returned, err := svc.Return(ctx, staff, r.ID, &condition)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.Status != enums.ReservationStatusReturned {
		t.Fatalf("expected Returned, got %s", returned.Status)
	}
	if returned.ReturnCondition == nil || *returned.ReturnCondition != condition {
		t.Fatal("return condition not recorded")
	}
	if equipmentStore.increments != 1 {
		t.Fatalf("expected one restock, got %d", equipmentStore.increments)
	}
	if got := equipmentStore.statusSet[equipment.ID]; got != enums.EquipmentStatusAvailable {
		t.Fatalf("expected Available after return, got %s", got)
	}
}

func TestIssueRequiresApprovedState(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	_, err := svc.Issue(context.Background(), staffFor(enums.DepartmentICT), r.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestTerminalStatesRejectFurtherTransitions(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	staff := staffFor(enums.DepartmentICT)
	ctx := context.Background()

	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusReturned
	approver := staff.UserID
	r.ApprovedBy = &approver

	_, err := svc.Approve(ctx, staff, r.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	_, err = svc.Return(ctx, staff, r.ID, nil)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	_, err = svc.Cancel(ctx, staff, r.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestOwnerCancelsOwnPendingReservation(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	cancelled, err := svc.Cancel(context.Background(), owner, r.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.ReservationStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
	if equipmentStore.increments != 0 {
		t.Fatal("pending cancellation must not restock")
	}
}

func TestOwnerCannotCancelApprovedReservation(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	staff := staffFor(enums.DepartmentICT)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, staff, r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := svc.Cancel(ctx, owner, r.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestStrangerCannotCancelPendingReservation(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)

	stranger := borrower()
	_, err := svc.Cancel(context.Background(), stranger, r.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestStaffCancelAfterApprovalRestocks(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	staff := staffFor(enums.DepartmentICT)
	ctx := context.Background()

	if _, err := svc.Approve(ctx, staff, r.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if equipmentStore.byID[equipment.ID].Available != 0 {
		t.Fatal("expected stock taken at approval")
	}

	if _, err := svc.Cancel(ctx, staff, r.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if equipmentStore.byID[equipment.ID].Available != 1 {
		t.Fatalf("expected restock on cancel, available=%d", equipmentStore.byID[equipment.ID].Available)
	}
	if got := equipmentStore.statusSet[equipment.ID]; got != enums.EquipmentStatusAvailable {
		t.Fatalf("expected Available after cancel restock, got %s", got)
	}
}

func TestStaffCancelsOverdueNeverApprovedRequest(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusOverdue

	cancelled, err := svc.Cancel(context.Background(), staffFor(enums.DepartmentICT), r.ID)
	if err != nil {
		t.Fatalf("cancel overdue: %v", err)
	}
	if cancelled.Status != enums.ReservationStatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
	if equipmentStore.increments != 0 {
		t.Fatal("never-approved cancellation must not restock")
	}
}

func TestStaffCancelsOverdueLoanRestocks(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 0, 1)
	owner := borrower()
	staff := staffFor(enums.DepartmentICT)
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusOverdue
	approver := staff.UserID
	r.ApprovedBy = &approver

	if _, err := svc.Cancel(context.Background(), staff, r.ID); err != nil {
		t.Fatalf("cancel overdue loan: %v", err)
	}
	if equipmentStore.increments != 1 {
		t.Fatal("expected restock for approved overdue loan")
	}
}

func TestOwnerCannotCancelOverdueReservation(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusOverdue

	_, err := svc.Cancel(context.Background(), owner, r.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestReturnOverdueLoanRestocks(t *testing.T) {
	svc, reservations, equipmentStore, equipment := newFixture(t, 0, 1)
	owner := borrower()
	staff := staffFor(enums.DepartmentICT)
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusOverdue
	approver := staff.UserID
	r.ApprovedBy = &approver

	returned, err := svc.Return(context.Background(), staff, r.ID, nil)
	if err != nil {
		t.Fatalf("return overdue: %v", err)
	}
	if returned.Status != enums.ReservationStatusReturned {
		t.Fatalf("expected Returned, got %s", returned.Status)
	}
	if equipmentStore.increments != 1 {
		t.Fatal("expected restock for approved overdue loan")
	}
}

func TestReturnOverdueNeverApprovedIsStateConflict(t *testing.T) {
	svc, reservations, _, equipment := newFixture(t, 1, 1)
	owner := borrower()
	r := pendingReservation(reservations, owner.UserID, equipment.ID)
	r.Status = enums.ReservationStatusOverdue

	_, err := svc.Return(context.Background(), staffFor(enums.DepartmentICT), r.ID, nil)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListAllScopesDepartmentForStaff(t *testing.T) {
	svc, reservations, _, _ := newFixture(t, 1, 1)

	staff := staffFor(enums.DepartmentICT)
	if _, err := svc.ListAll(context.Background(), staff, nil, pagination.Params{}); err != nil {
		t.Fatalf("list all: %v", err)
	}
	if reservations.listAll.Department == nil || *reservations.listAll.Department != enums.DepartmentICT {
		t.Fatalf("expected department scope, got %v", reservations.listAll.Department)
	}

	if _, err := svc.ListAll(context.Background(), adminActor(), nil, pagination.Params{}); err != nil {
		t.Fatalf("admin list all: %v", err)
	}
	if reservations.listAll.Department != nil {
		t.Fatal("admin listing must be unscoped")
	}

	_, err := svc.ListAll(context.Background(), borrower(), nil, pagination.Params{})
	expectCode(t, err, pkgerrors.CodeForbidden)
}
