package controllers

import (
	"net/http"

	"github.com/campuslabs/labstock-backend/api/middleware"
	"github.com/campuslabs/labstock-backend/api/responses"
	"github.com/campuslabs/labstock-backend/api/validators"
	"github.com/campuslabs/labstock-backend/internal/resources"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

// ResourcesList serves the learning resource library.
func ResourcesList(svc resources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resource service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := resources.ListFilter{
			Category: validators.QueryString(r, "category"),
			Page:     page,
		}

		if raw := validators.QueryString(r, "type"); raw != nil {
			resourceType := enums.ResourceType(*raw)
			if !resourceType.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid resource type"))
				return
			}
			filter.Type = &resourceType
		}

		if raw := validators.QueryString(r, "department"); raw != nil {
			dept := enums.Department(*raw)
			if !dept.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid department"))
				return
			}
			filter.Department = &dept
		}

		result, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createResourceRequest struct {
	Title       string             `json:"title" validate:"required"`
	Type        enums.ResourceType `json:"type" validate:"required"`
	URL         string             `json:"url" validate:"required"`
	Category    *string            `json:"category,omitempty"`
	Department  *enums.Department  `json:"department,omitempty"`
	Duration    *string            `json:"duration,omitempty"`
	Size        *string            `json:"size,omitempty"`
	Thumbnail   *string            `json:"thumbnail,omitempty"`
	IsEssential bool               `json:"is_essential"`
}

// ResourceCreate publishes a learning resource.
func ResourceCreate(svc resources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resource service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createResourceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resource, err := svc.Create(r.Context(), *actor, resources.CreateInput{
			Title:       body.Title,
			Type:        body.Type,
			URL:         body.URL,
			Category:    body.Category,
			Department:  body.Department,
			Duration:    body.Duration,
			Size:        body.Size,
			Thumbnail:   body.Thumbnail,
			IsEssential: body.IsEssential,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resource)
	}
}
