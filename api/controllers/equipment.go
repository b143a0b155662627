package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuslabs/labstock-backend/api/middleware"
	"github.com/campuslabs/labstock-backend/api/responses"
	"github.com/campuslabs/labstock-backend/api/validators"
	"github.com/campuslabs/labstock-backend/internal/catalog"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

const searchMaxLen = 120

// EquipmentList serves the catalog listing. Anonymous requests see the public
// view; staff department scoping happens in the service.
func EquipmentList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.ListInput{
			Category: validators.QueryString(r, "category"),
			Page:     page,
		}

		if raw := validators.QueryString(r, "status"); raw != nil {
			status := enums.EquipmentStatus(*raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status"))
				return
			}
			input.Status = &status
		}

		if raw := validators.QueryString(r, "department"); raw != nil {
			dept := enums.Department(*raw)
			if !dept.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid department"))
				return
			}
			input.Department = &dept
		}

		if raw := validators.QueryString(r, "search"); raw != nil {
			search := validators.SanitizeString(*raw, searchMaxLen)
			if search != "" {
				input.Search = &search
			}
		}

		result, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// EquipmentGet serves a single catalog entry.
func EquipmentGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := parseUUIDParam(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, equipment)
	}
}

type createEquipmentRequest struct {
	Name                string            `json:"name" validate:"required"`
	Category            string            `json:"category" validate:"required"`
	Department          *enums.Department `json:"department,omitempty"`
	Stock               *int              `json:"stock,omitempty"`
	Available           *int              `json:"available,omitempty"`
	ModelNumber         *string           `json:"model_number,omitempty"`
	SerialNumber        *string           `json:"serial_number,omitempty"`
	AssetTag            *string           `json:"asset_tag,omitempty"`
	Description         *string           `json:"description,omitempty"`
	PurchaseDate        *time.Time        `json:"purchase_date,omitempty"`
	WarrantyExpiry      *time.Time        `json:"warranty_expiry,omitempty"`
	Cost                *float64          `json:"cost,omitempty"`
	Supplier            *string           `json:"supplier,omitempty"`
	Location            *string           `json:"location,omitempty"`
	RequiresMaintenance *bool             `json:"requires_maintenance,omitempty"`
	AllowOvernight      *bool             `json:"allow_overnight,omitempty"`
	Image               *string           `json:"image,omitempty"`
	GalleryImages       []string          `json:"gallery_images,omitempty"`
	VideoURLs           []string          `json:"video_urls,omitempty"`
	ManualURL           *string           `json:"manual_url,omitempty"`
}

func (req createEquipmentRequest) toInput() catalog.CreateInput {
	return catalog.CreateInput{
		Name:                strings.TrimSpace(req.Name),
		Category:            strings.TrimSpace(req.Category),
		Department:          req.Department,
		Stock:               req.Stock,
		Available:           req.Available,
		ModelNumber:         req.ModelNumber,
		SerialNumber:        req.SerialNumber,
		AssetTag:            req.AssetTag,
		Description:         req.Description,
		PurchaseDate:        req.PurchaseDate,
		WarrantyExpiry:      req.WarrantyExpiry,
		Cost:                req.Cost,
		Supplier:            req.Supplier,
		Location:            req.Location,
		RequiresMaintenance: req.RequiresMaintenance,
		AllowOvernight:      req.AllowOvernight,
		Image:               req.Image,
		GalleryImages:       req.GalleryImages,
		VideoURLs:           req.VideoURLs,
		ManualURL:           req.ManualURL,
	}
}

// EquipmentCreate registers new equipment for the actor's department.
func EquipmentCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createEquipmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipment, err := svc.Create(r.Context(), *actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, equipment)
	}
}

type updateEquipmentRequest struct {
	Name                *string                `json:"name,omitempty"`
	Category            *string                `json:"category,omitempty"`
	Department          *enums.Department      `json:"department,omitempty"`
	Status              *enums.EquipmentStatus `json:"status,omitempty"`
	Stock               *int                   `json:"stock,omitempty"`
	Available           *int                   `json:"available,omitempty"`
	ModelNumber         *string                `json:"model_number,omitempty"`
	SerialNumber        *string                `json:"serial_number,omitempty"`
	AssetTag            *string                `json:"asset_tag,omitempty"`
	Description         *string                `json:"description,omitempty"`
	PurchaseDate        *time.Time             `json:"purchase_date,omitempty"`
	WarrantyExpiry      *time.Time             `json:"warranty_expiry,omitempty"`
	Cost                *float64               `json:"cost,omitempty"`
	Supplier            *string                `json:"supplier,omitempty"`
	Location            *string                `json:"location,omitempty"`
	RequiresMaintenance *bool                  `json:"requires_maintenance,omitempty"`
	AllowOvernight      *bool                  `json:"allow_overnight,omitempty"`
	Image               *string                `json:"image,omitempty"`
	GalleryImages       *[]string              `json:"gallery_images,omitempty"`
	VideoURLs           *[]string              `json:"video_urls,omitempty"`
	ManualURL           *string                `json:"manual_url,omitempty"`
}

func (req updateEquipmentRequest) toInput() catalog.UpdateInput {
	return catalog.UpdateInput{
		Name:                req.Name,
		Category:            req.Category,
		Department:          req.Department,
		Status:              req.Status,
		Stock:               req.Stock,
		Available:           req.Available,
		ModelNumber:         req.ModelNumber,
		SerialNumber:        req.SerialNumber,
		AssetTag:            req.AssetTag,
		Description:         req.Description,
		PurchaseDate:        req.PurchaseDate,
		WarrantyExpiry:      req.WarrantyExpiry,
		Cost:                req.Cost,
		Supplier:            req.Supplier,
		Location:            req.Location,
		RequiresMaintenance: req.RequiresMaintenance,
		AllowOvernight:      req.AllowOvernight,
		Image:               req.Image,
		GalleryImages:       req.GalleryImages,
		VideoURLs:           req.VideoURLs,
		ManualURL:           req.ManualURL,
	}
}

// EquipmentUpdate mutates an existing catalog entry.
func EquipmentUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseUUIDParam(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEquipmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipment, err := svc.Update(r.Context(), *actor, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, equipment)
	}
}

// EquipmentDelete removes a catalog entry.
func EquipmentDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := parseUUIDParam(r, "equipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), *actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
