package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuslabs/labstock-backend/internal/auth"
	"github.com/campuslabs/labstock-backend/internal/catalog"
	"github.com/campuslabs/labstock-backend/internal/identity"
	"github.com/campuslabs/labstock-backend/internal/ledger"
	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/internal/reporting"
	"github.com/campuslabs/labstock-backend/internal/resources"
	pkgAuth "github.com/campuslabs/labstock-backend/pkg/auth"
	"github.com/campuslabs/labstock-backend/pkg/auth/session"
	"github.com/campuslabs/labstock-backend/pkg/config"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return session.NewAccessID(), "refresh", nil
}

func (stubSessionManager) Revoke(context.Context, string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Me(context.Context, uuid.UUID) (*identity.UserDTO, error) {
	return &identity.UserDTO{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(context.Context, *policy.Actor, catalog.ListInput) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

func (stubCatalogService) Get(context.Context, uuid.UUID) (*catalog.EquipmentDTO, error) {
	return &catalog.EquipmentDTO{}, nil
}

func (stubCatalogService) Create(context.Context, policy.Actor, catalog.CreateInput) (*catalog.EquipmentDTO, error) {
	return &catalog.EquipmentDTO{}, nil
}

func (stubCatalogService) Update(context.Context, policy.Actor, uuid.UUID, catalog.UpdateInput) (*catalog.EquipmentDTO, error) {
	return &catalog.EquipmentDTO{}, nil
}

func (stubCatalogService) Delete(context.Context, policy.Actor, uuid.UUID) error {
	return nil
}

type stubLedgerService struct{}

func (stubLedgerService) Create(context.Context, policy.Actor, ledger.CreateInput) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubLedgerService) Approve(context.Context, policy.Actor, uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubLedgerService) Issue(context.Context, policy.Actor, uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubLedgerService) Return(context.Context, policy.Actor, uuid.UUID, *string) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubLedgerService) Cancel(context.Context, policy.Actor, uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{}, nil
}

func (stubLedgerService) ListMine(context.Context, policy.Actor, pagination.Params) (*ledger.ListResult, error) {
	return &ledger.ListResult{}, nil
}

func (stubLedgerService) ListAll(context.Context, policy.Actor, *enums.ReservationStatus, pagination.Params) (*ledger.ListResult, error) {
	return &ledger.ListResult{}, nil
}

type stubIdentityService struct{}

func (stubIdentityService) List(context.Context, policy.Actor, identity.ListFilter) (*identity.ListResult, error) {
	return &identity.ListResult{}, nil
}

func (stubIdentityService) Create(context.Context, policy.Actor, identity.CreateUserInput) (*identity.CreatedUserDTO, error) {
	return &identity.CreatedUserDTO{}, nil
}

func (stubIdentityService) Update(context.Context, policy.Actor, uuid.UUID, identity.UpdateUserInput) (*identity.UserDTO, error) {
	return &identity.UserDTO{}, nil
}

func (stubIdentityService) Deactivate(context.Context, policy.Actor, uuid.UUID) error {
	return nil
}

type stubResourceService struct{}

func (stubResourceService) List(context.Context, *policy.Actor, resources.ListFilter) (*resources.ListResult, error) {
	return &resources.ListResult{}, nil
}

func (stubResourceService) Create(context.Context, policy.Actor, resources.CreateInput) (*resources.ResourceDTO, error) {
	return &resources.ResourceDTO{}, nil
}

type stubReportingService struct{}

func (stubReportingService) Stats(context.Context, *policy.Actor) (any, error) {
	return map[string]int{}, nil
}

func (stubReportingService) Reports(ctx context.Context, actor policy.Actor) (*reporting.ReportsResponse, error) {
	if err := policy.Require(actor, policy.CapInstitutionReports); err != nil {
		return nil, err
	}
	return &reporting.ReportsResponse{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "labstock", ExpirationMinutes: 30},
	}
}

func newTestRouter() http.Handler {
	return NewRouter(
		testConfig(),
		nil,
		stubPinger{},
		stubPinger{},
		stubSessionManager{},
		stubAuthService{},
		stubRegisterService{},
		stubCatalogService{},
		stubLedgerService{},
		stubIdentityService{},
		stubResourceService{},
		stubReportingService{},
	)
}

func mintRouterToken(t *testing.T, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter()

	paths := []string{
		"/health/live",
		"/health/ready",
		"/api/v1/equipment/",
		"/api/v1/resources/",
		"/api/v1/dashboard/stats",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestRouterProtectedEndpointsRejectAnonymous(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/equipment/"},
		{http.MethodPost, "/api/v1/reservations/"},
		{http.MethodGet, "/api/v1/reservations/my"},
		{http.MethodGet, "/api/v1/users/"},
		{http.MethodGet, "/api/v1/dashboard/reports"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouterCapabilityGates(t *testing.T) {
	router := newTestRouter()

	studentToken := mintRouterToken(t, enums.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("users as student: expected 403 got %d", rec.Code)
	}

	staffToken := mintRouterToken(t, enums.RoleLabStaff)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/reports", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reports as lab staff: expected 403 got %d", rec.Code)
	}

	adminToken := mintRouterToken(t, enums.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/reports", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reports as admin: expected 200 got %d", rec.Code)
	}
}

func TestRouterStaffLedgerView(t *testing.T) {
	router := newTestRouter()

	studentToken := mintRouterToken(t, enums.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/all", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("ledger as student: expected 403 got %d", rec.Code)
	}

	staffToken := mintRouterToken(t, enums.RoleLabStaff)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reservations/all", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger as staff: expected 200 got %d", rec.Code)
	}
}
