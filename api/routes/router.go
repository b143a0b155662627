package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslabs/labstock-backend/api/controllers"
	"github.com/campuslabs/labstock-backend/api/middleware"
	authsvc "github.com/campuslabs/labstock-backend/internal/auth"
	"github.com/campuslabs/labstock-backend/internal/catalog"
	"github.com/campuslabs/labstock-backend/internal/identity"
	"github.com/campuslabs/labstock-backend/internal/ledger"
	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/internal/reporting"
	"github.com/campuslabs/labstock-backend/internal/resources"
	"github.com/campuslabs/labstock-backend/pkg/auth/session"
	"github.com/campuslabs/labstock-backend/pkg/config"
	"github.com/campuslabs/labstock-backend/pkg/logger"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database controllers.Pinger,
	cache controllers.Pinger,
	sessions sessionManager,
	authService authsvc.Service,
	registerService authsvc.RegisterService,
	catalogService catalog.Service,
	ledgerService ledger.Service,
	identityService identity.Service,
	resourceService resources.Service,
	reportingService reporting.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cache, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(registerService, logg))
			r.Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
			r.With(middleware.Auth(cfg.JWT, sessions, logg)).Get("/me", controllers.AuthMe(authService, logg))
		})

		r.Route("/equipment", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Get("/", controllers.EquipmentList(catalogService, logg))
			r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Get("/{equipmentId}", controllers.EquipmentGet(catalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Use(middleware.RequireStaff(logg))
				r.Post("/", controllers.EquipmentCreate(catalogService, logg))
				r.Put("/{equipmentId}", controllers.EquipmentUpdate(catalogService, logg))
				r.Delete("/{equipmentId}", controllers.EquipmentDelete(catalogService, logg))
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/", controllers.ReservationCreate(ledgerService, logg))
			r.Get("/my", controllers.ReservationListMine(ledgerService, logg))
			r.With(middleware.RequireStaff(logg)).Get("/all", controllers.ReservationListAll(ledgerService, logg))
			r.Put("/{reservationId}", controllers.ReservationUpdate(ledgerService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireCapability(policy.CapManageUsers, logg))
			r.Get("/", controllers.UsersList(identityService, logg))
			r.Post("/", controllers.UserCreate(identityService, logg))
			r.Put("/{userId}", controllers.UserUpdate(identityService, logg))
			r.Delete("/{userId}", controllers.UserDeactivate(identityService, logg))
		})

		r.Route("/resources", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Get("/", controllers.ResourcesList(resourceService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Use(middleware.RequireCapability(policy.CapPublishResources, logg))
				r.Post("/", controllers.ResourceCreate(resourceService, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Get("/stats", controllers.DashboardStats(reportingService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessions, logg))
				r.Use(middleware.RequireCapability(policy.CapInstitutionReports, logg))
				r.Get("/reports", controllers.DashboardReports(reportingService, logg))
			})
		})
	})

	return r
}
