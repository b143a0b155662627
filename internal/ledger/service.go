package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuslabs/labstock-backend/internal/catalog"
	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentStore is the slice of catalog persistence the ledger needs.
type EquipmentStore interface {
	WithTx(tx *gorm.DB) EquipmentStore
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementAvailable(ctx context.Context, id uuid.UUID) (bool, error)
	MarkInUseIfDepleted(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) error
}

type catalogStore struct {
	repo *catalog.Repository
}

// NewEquipmentStore adapts the catalog repository for ledger transactions.
func NewEquipmentStore(repo *catalog.Repository) EquipmentStore {
	return catalogStore{repo: repo}
}

func (c catalogStore) WithTx(tx *gorm.DB) EquipmentStore {
	return catalogStore{repo: c.repo.WithTx(tx)}
}

func (c catalogStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	return c.repo.FindByID(ctx, id)
}

func (c catalogStore) DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.repo.DecrementAvailable(ctx, id)
}

func (c catalogStore) IncrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.repo.IncrementAvailable(ctx, id)
}

func (c catalogStore) MarkInUseIfDepleted(ctx context.Context, id uuid.UUID) error {
	return c.repo.MarkInUseIfDepleted(ctx, id)
}

func (c catalogStore) SetStatus(ctx context.Context, id uuid.UUID, status enums.EquipmentStatus) error {
	return c.repo.SetStatus(ctx, id, status)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the reservation ledger operations.
type Service interface {
	Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.Reservation, error)
	Approve(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error)
	Issue(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error)
	Return(ctx context.Context, actor policy.Actor, id uuid.UUID, condition *string) (*models.Reservation, error)
	Cancel(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error)
	ListMine(ctx context.Context, actor policy.Actor, page pagination.Params) (*ListResult, error)
	ListAll(ctx context.Context, actor policy.Actor, status *enums.ReservationStatus, page pagination.Params) (*ListResult, error)
}

type service struct {
	reservations ReservationStore
	equipment    EquipmentStore
	tx           txRunner
}

// NewService constructs a ledger service instance.
func NewService(reservations ReservationStore, equipment EquipmentStore, tx txRunner) (Service, error) {
	if reservations == nil {
		return nil, fmt.Errorf("reservation store required")
	}
	if equipment == nil {
		return nil, fmt.Errorf("equipment store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		reservations: reservations,
		equipment:    equipment,
		tx:           tx,
	}, nil
}

// Create registers a Pending reservation after a fast availability check. The
// authoritative stock check happens again at approval time.
func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.Reservation, error) {
	if !policy.CanBorrowAndReserve(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account cannot borrow or reserve equipment")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}

	equipment, err := s.equipment.FindByID(ctx, input.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment")
	}
	if equipment.Available <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "equipment is not available")
	}

	reservation := &models.Reservation{
		UserID:      actor.UserID,
		EquipmentID: input.EquipmentID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      enums.ReservationStatusPending,
		Purpose:     input.Purpose,
		ModuleCode:  input.ModuleCode,
	}
	created, err := s.reservations.Create(ctx, reservation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating reservation")
	}
	return created, nil
}

// Approve moves Pending to Approved and takes one unit of stock. The
// conditional decrement is the concurrency guard: the second of two racing
// approvals for the last unit sees zero rows affected and fails with Conflict.
func (s *service) Approve(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error) {
	var approved *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reservations := s.reservations.WithTx(tx)
		equipmentStore := s.equipment.WithTx(tx)

		reservation, equipment, err := s.loadPair(ctx, reservations, equipmentStore, id)
		if err != nil {
			return err
		}
		if err := policy.RequireDepartment(actor, equipment.Department); err != nil {
			return err
		}
		if err := requireStatus(reservation, enums.ReservationStatusPending); err != nil {
			return err
		}

		taken, err := equipmentStore.DecrementAvailable(ctx, equipment.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
		}
		if !taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "equipment is no longer available")
		}
		// Flip on the stored count, not the row read above, so two racing
		// approvals draining the last units cannot both skip the flip.
		if err := equipmentStore.MarkInUseIfDepleted(ctx, equipment.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating equipment status")
		}

		approver := actor.UserID
		reservation.Status = enums.ReservationStatusApproved
		reservation.ApprovedBy = &approver
		approved, err = reservations.Save(ctx, reservation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Issue hands the equipment over: Approved to Borrowed, no stock effect.
func (s *service) Issue(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error) {
	reservation, equipment, err := s.loadPair(ctx, s.reservations, s.equipment, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireDepartment(actor, equipment.Department); err != nil {
		return nil, err
	}
	if err := requireStatus(reservation, enums.ReservationStatusApproved); err != nil {
		return nil, err
	}

	reservation.Status = enums.ReservationStatusBorrowed
	saved, err := s.reservations.Save(ctx, reservation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving reservation")
	}
	return saved, nil
}

// Return closes out a loan: Borrowed (or an approved loan gone Overdue) to
// Returned, restocking the unit taken at approval.
func (s *service) Return(ctx context.Context, actor policy.Actor, id uuid.UUID, condition *string) (*models.Reservation, error) {
	var returned *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reservations := s.reservations.WithTx(tx)
		equipmentStore := s.equipment.WithTx(tx)

		reservation, equipment, err := s.loadPair(ctx, reservations, equipmentStore, id)
		if err != nil {
			return err
		}
		if err := policy.RequireDepartment(actor, equipment.Department); err != nil {
			return err
		}
		if err := requireStatus(reservation, enums.ReservationStatusBorrowed, enums.ReservationStatusOverdue); err != nil {
			return err
		}
		if reservation.Status == enums.ReservationStatusOverdue && reservation.ApprovedBy == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation was never approved")
		}

		if err := s.restock(ctx, equipmentStore, equipment.ID); err != nil {
			return err
		}

		reservation.Status = enums.ReservationStatusReturned
		reservation.ReturnCondition = condition
		returned, err = reservations.Save(ctx, reservation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// Cancel aborts a reservation. Owners may cancel their own Pending request;
// staff may cancel Pending, Approved or Overdue ones, so a request swept to
// Overdue before it was ever approved can still be closed out. Cancelling out
// of a stock-decremented state returns the unit, so approval then cancellation
// cannot leak stock.
func (s *service) Cancel(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Reservation, error) {
	var cancelled *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reservations := s.reservations.WithTx(tx)
		equipmentStore := s.equipment.WithTx(tx)

		reservation, equipment, err := s.loadPair(ctx, reservations, equipmentStore, id)
		if err != nil {
			return err
		}

		isOwner := reservation.UserID == actor.UserID
		isManager := policy.CanManageDepartment(actor, equipment.Department)

		switch reservation.Status {
		case enums.ReservationStatusPending:
			if !isOwner && !isManager {
				return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
			}
		case enums.ReservationStatusApproved, enums.ReservationStatusOverdue:
			if !isManager {
				return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot cancel a %s reservation", reservation.Status))
		}

		// ApprovedBy doubles as the stock-decremented marker.
		if reservation.ApprovedBy != nil {
			if err := s.restock(ctx, equipmentStore, equipment.ID); err != nil {
				return err
			}
		}

		reservation.Status = enums.ReservationStatusCancelled
		cancelled, err = reservations.Save(ctx, reservation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ListMine returns the actor's own reservations.
func (s *service) ListMine(ctx context.Context, actor policy.Actor, page pagination.Params) (*ListResult, error) {
	rows, total, err := s.reservations.ListByUser(ctx, actor.UserID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reservations")
	}
	return &ListResult{Reservations: rows, Meta: pagination.BuildMeta(page, total)}, nil
}

// ListAll returns reservations across users for staff, department scoped for
// departmental roles.
func (s *service) ListAll(ctx context.Context, actor policy.Actor, status *enums.ReservationStatus, page pagination.Params) (*ListResult, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	filter := ListFilter{
		Status:     status,
		Department: policy.DepartmentScope(actor),
		Page:       page,
	}
	rows, total, err := s.reservations.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reservations")
	}
	return &ListResult{Reservations: rows, Meta: pagination.BuildMeta(page, total)}, nil
}

func (s *service) loadPair(ctx context.Context, reservations ReservationStore, equipmentStore EquipmentStore, id uuid.UUID) (*models.Reservation, *models.Equipment, error) {
	reservation, err := reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reservation")
	}
	equipment, err := equipmentStore.FindByID(ctx, reservation.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment")
	}
	return reservation, equipment, nil
}

func (s *service) restock(ctx context.Context, equipmentStore EquipmentStore, equipmentID uuid.UUID) error {
	restocked, err := equipmentStore.IncrementAvailable(ctx, equipmentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restocking equipment")
	}
	if restocked {
		if err := equipmentStore.SetStatus(ctx, equipmentID, enums.EquipmentStatusAvailable); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating equipment status")
		}
	}
	return nil
}

func requireStatus(reservation *models.Reservation, allowed ...enums.ReservationStatus) error {
	for _, status := range allowed {
		if reservation.Status == status {
			return nil
		}
	}
	if reservation.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("reservation is already %s", reservation.Status))
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot transition a %s reservation", reservation.Status))
}
