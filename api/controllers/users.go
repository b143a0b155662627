package controllers

import (
	"net/http"
	"strings"

	"github.com/campuslabs/labstock-backend/api/middleware"
	"github.com/campuslabs/labstock-backend/api/responses"
	"github.com/campuslabs/labstock-backend/api/validators"
	"github.com/campuslabs/labstock-backend/internal/identity"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

// UsersList serves the administrative account listing.
func UsersList(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
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

		filter := identity.ListFilter{Page: page}

		if raw := validators.QueryString(r, "role"); raw != nil {
			role := enums.Role(*raw)
			if !role.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role"))
				return
			}
			filter.Role = &role
		}

		if raw := validators.QueryString(r, "department"); raw != nil {
			dept := enums.Department(*raw)
			if !dept.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid department"))
				return
			}
			filter.Department = &dept
		}

		if raw := validators.QueryString(r, "status"); raw != nil {
			status := enums.UserStatus(*raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user status"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), *actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createUserRequest struct {
	FullName           string            `json:"full_name" validate:"required"`
	Email              string            `json:"email" validate:"required,email"`
	Password           *string           `json:"password,omitempty"`
	Role               enums.Role        `json:"role" validate:"required"`
	Department         *enums.Department `json:"department,omitempty"`
	StudentID          *string           `json:"student_id,omitempty"`
	Avatar             *string           `json:"avatar,omitempty"`
	CanBorrow          *bool             `json:"can_borrow,omitempty"`
	CanReserve         *bool             `json:"can_reserve,omitempty"`
	CanAccessResources *bool             `json:"can_access_resources,omitempty"`
	CanViewReports     *bool             `json:"can_view_reports,omitempty"`
}

// UserCreate registers an account on behalf of an administrator. When no
// password is supplied the generated one comes back once in the response.
func UserCreate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Create(r.Context(), *actor, identity.CreateUserInput{
			FullName:           strings.TrimSpace(body.FullName),
			Email:              body.Email,
			Password:           body.Password,
			Role:               body.Role,
			Department:         body.Department,
			StudentID:          body.StudentID,
			Avatar:             body.Avatar,
			CanBorrow:          body.CanBorrow,
			CanReserve:         body.CanReserve,
			CanAccessResources: body.CanAccessResources,
			CanViewReports:     body.CanViewReports,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

type updateUserRequest struct {
	FullName           *string           `json:"full_name,omitempty"`
	Email              *string           `json:"email,omitempty"`
	Role               *enums.Role       `json:"role,omitempty"`
	Department         *enums.Department `json:"department,omitempty"`
	StudentID          *string           `json:"student_id,omitempty"`
	Avatar             *string           `json:"avatar,omitempty"`
	Status             *enums.UserStatus `json:"status,omitempty"`
	CanBorrow          *bool             `json:"can_borrow,omitempty"`
	CanReserve         *bool             `json:"can_reserve,omitempty"`
	CanAccessResources *bool             `json:"can_access_resources,omitempty"`
	CanViewReports     *bool             `json:"can_view_reports,omitempty"`
}

// UserUpdate mutates an account. Passwords never travel through this path.
func UserUpdate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), *actor, id, identity.UpdateUserInput{
			FullName:           body.FullName,
			Email:              body.Email,
			Role:               body.Role,
			Department:         body.Department,
			StudentID:          body.StudentID,
			Avatar:             body.Avatar,
			Status:             body.Status,
			CanBorrow:          body.CanBorrow,
			CanReserve:         body.CanReserve,
			CanAccessResources: body.CanAccessResources,
			CanViewReports:     body.CanViewReports,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// UserDeactivate flips an account to Inactive. Accounts are never deleted so
// the reservation ledger keeps its author references.
func UserDeactivate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), *actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
