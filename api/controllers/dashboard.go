package controllers

import (
	"net/http"

	"github.com/campuslabs/labstock-backend/api/middleware"
	"github.com/campuslabs/labstock-backend/api/responses"
	"github.com/campuslabs/labstock-backend/internal/reporting"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

// DashboardStats serves the role-shaped dashboard payload. Anonymous callers
// get institution totals.
func DashboardStats(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reporting service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// DashboardReports serves the institution-wide analytics view.
func DashboardReports(svc reporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reporting service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		report, err := svc.Reports(r.Context(), *actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
