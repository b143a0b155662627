package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuslabs/labstock-backend/internal/catalog"
	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/enums"
)

type stubCatalogService struct {
	lastList   catalog.ListInput
	lastCreate catalog.CreateInput
	lastID     uuid.UUID
	dto        *catalog.EquipmentDTO
	err        error
}

func (s *stubCatalogService) List(_ context.Context, _ *policy.Actor, input catalog.ListInput) (*catalog.ListResult, error) {
	s.lastList = input
	return &catalog.ListResult{}, s.err
}

func (s *stubCatalogService) Get(_ context.Context, id uuid.UUID) (*catalog.EquipmentDTO, error) {
	s.lastID = id
	return s.dto, s.err
}

func (s *stubCatalogService) Create(_ context.Context, _ policy.Actor, input catalog.CreateInput) (*catalog.EquipmentDTO, error) {
	s.lastCreate = input
	return s.dto, s.err
}

func (s *stubCatalogService) Update(_ context.Context, _ policy.Actor, id uuid.UUID, _ catalog.UpdateInput) (*catalog.EquipmentDTO, error) {
	s.lastID = id
	return s.dto, s.err
}

func (s *stubCatalogService) Delete(_ context.Context, _ policy.Actor, id uuid.UUID) error {
	s.lastID = id
	return s.err
}

func withEquipmentID(req *http.Request, raw string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("equipmentId", raw)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestEquipmentListParsesFilters(t *testing.T) {
	svc := &stubCatalogService{}
	handler := EquipmentList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/?category=Measurement&status=Available&department=ICT&search=oscillo&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastList.Category == nil || *svc.lastList.Category != "Measurement" {
		t.Fatalf("expected category filter, got %v", svc.lastList.Category)
	}
	if svc.lastList.Status == nil || *svc.lastList.Status != enums.EquipmentStatusAvailable {
		t.Fatalf("expected status filter, got %v", svc.lastList.Status)
	}
	if svc.lastList.Department == nil || *svc.lastList.Department != enums.DepartmentICT {
		t.Fatalf("expected department filter, got %v", svc.lastList.Department)
	}
	if svc.lastList.Search == nil || *svc.lastList.Search != "oscillo" {
		t.Fatalf("expected search filter, got %v", svc.lastList.Search)
	}
	if svc.lastList.Page.Page != 2 || svc.lastList.Page.Limit != 10 {
		t.Fatalf("expected page 2 limit 10, got %+v", svc.lastList.Page)
	}
}

func TestEquipmentListRejectsBadStatus(t *testing.T) {
	handler := EquipmentList(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?status=Broken", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestEquipmentCreateRequiresActor(t *testing.T) {
	handler := EquipmentCreate(&stubCatalogService{}, nil)

	body := `{"name":"Digital Oscilloscope","category":"Measurement"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestEquipmentCreate(t *testing.T) {
	svc := &stubCatalogService{dto: &catalog.EquipmentDTO{ID: uuid.New(), Name: "Digital Oscilloscope"}}
	handler := EquipmentCreate(svc, nil)

	body := `{"name":"  Digital Oscilloscope  ","category":"Measurement","stock":4}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, enums.RoleLabStaff)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.Name != "Digital Oscilloscope" {
		t.Fatalf("expected trimmed name, got %q", svc.lastCreate.Name)
	}
	if svc.lastCreate.Stock == nil || *svc.lastCreate.Stock != 4 {
		t.Fatalf("expected stock 4, got %v", svc.lastCreate.Stock)
	}
}

func TestEquipmentCreateAcceptsCallerAvailable(t *testing.T) {
	svc := &stubCatalogService{dto: &catalog.EquipmentDTO{ID: uuid.New(), Name: "Scope"}}
	handler := EquipmentCreate(svc, nil)

	body := `{"name":"Scope","category":"Bench","stock":5,"available":3}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, enums.RoleAdmin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.Available == nil || *svc.lastCreate.Available != 3 {
		t.Fatalf("expected available 3, got %v", svc.lastCreate.Available)
	}
}

func TestEquipmentDeleteParsesID(t *testing.T) {
	svc := &stubCatalogService{}
	handler := EquipmentDelete(svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = withEquipmentID(withActor(req, enums.RoleAdmin), id.String())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastID != id {
		t.Fatalf("expected id %s got %s", id, svc.lastID)
	}
}

func TestEquipmentUpdateRejectsBadID(t *testing.T) {
	handler := EquipmentUpdate(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withEquipmentID(withActor(req, enums.RoleAdmin), "not-a-uuid")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
