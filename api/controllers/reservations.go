package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/campuslabs/labstock-backend/api/middleware"
	"github.com/campuslabs/labstock-backend/api/responses"
	"github.com/campuslabs/labstock-backend/api/validators"
	"github.com/campuslabs/labstock-backend/internal/ledger"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

type createReservationRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Purpose     *string   `json:"purpose,omitempty"`
	ModuleCode  *string   `json:"module_code,omitempty"`
}

// ReservationCreate files a new Pending reservation for the actor.
func ReservationCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Create(r.Context(), *actor, ledger.CreateInput{
			EquipmentID: body.EquipmentID,
			StartDate:   body.StartDate,
			EndDate:     body.EndDate,
			Purpose:     body.Purpose,
			ModuleCode:  body.ModuleCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ledger.FromModel(reservation))
	}
}

// ReservationListMine serves the actor's own reservation history.
func ReservationListMine(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), *actor, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReservationListAll serves the staff ledger view, scoped to the actor's
// department inside the service.
func ReservationListAll(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ReservationStatus
		if raw := validators.QueryString(r, "status"); raw != nil {
			parsed := enums.ReservationStatus(*raw)
			if !parsed.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status"))
				return
			}
			status = &parsed
		}

		result, err := svc.ListAll(r.Context(), *actor, status, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type updateReservationRequest struct {
	Status          enums.ReservationStatus `json:"status" validate:"required"`
	ReturnCondition *string                 `json:"return_condition,omitempty"`
}

// ReservationUpdate drives the reservation lifecycle. The requested status
// selects the transition; the service enforces who may perform it and from
// which prior status.
func ReservationUpdate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseUUIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var reservation *models.Reservation
		switch body.Status {
		case enums.ReservationStatusApproved:
			reservation, err = svc.Approve(r.Context(), *actor, id)
		case enums.ReservationStatusBorrowed:
			reservation, err = svc.Issue(r.Context(), *actor, id)
		case enums.ReservationStatusReturned:
			reservation, err = svc.Return(r.Context(), *actor, id, body.ReturnCondition)
		case enums.ReservationStatusCancelled:
			reservation, err = svc.Cancel(r.Context(), *actor, id)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unsupported status transition")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ledger.FromModel(reservation))
	}
}
