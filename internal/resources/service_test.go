package resources

import (
	"context"
	"testing"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubRepo struct {
	rows    []models.Resource
	total   int64
	created *models.Resource
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter) ([]models.Resource, int64, error) {
	return s.rows, s.total, nil
}

func (s *stubRepo) Create(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	s.created = resource
	return resource, nil
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestListIsPublic(t *testing.T) {
	repo := &stubRepo{rows: []models.Resource{{Title: "Lab Safety Guide"}}, total: 1}
	svc, _ := NewService(repo)

	result, err := svc.List(context.Background(), nil, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Resources) != 1 || result.Resources[0].Title != "Lab Safety Guide" {
		t.Fatalf("unexpected listing: %+v", result.Resources)
	}
}

func TestCreateRequiresPublishCapability(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	student := policy.Actor{UserID: uuid.New(), Role: enums.RoleStudent}

	_, err := svc.Create(context.Background(), student, CreateInput{
		Title: "Guide",
		Type:  enums.ResourceTypePDF,
		URL:   "https://example.edu/guide.pdf",
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateLecturerMayPublish(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)
	lecturer := policy.Actor{UserID: uuid.New(), Role: enums.RoleLecturer}

	dto, err := svc.Create(context.Background(), lecturer, CreateInput{
		Title: "Oscilloscope Basics",
		Type:  enums.ResourceTypeVideo,
		URL:   "https://example.edu/scope.mp4",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Department != enums.DepartmentAll {
		t.Fatalf("expected department to default to All, got %s", dto.Department)
	}
}

func TestCreateForcesDepartmentForScopedStaff(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(repo)
	dept := enums.DepartmentICT
	other := enums.DepartmentMechatronic
	staff := policy.Actor{UserID: uuid.New(), Role: enums.RoleLabStaff, Department: &dept}

	dto, err := svc.Create(context.Background(), staff, CreateInput{
		Title:      "Router Configuration",
		Type:       enums.ResourceTypeDocument,
		URL:        "https://example.edu/router.docx",
		Department: &other,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Department != enums.DepartmentICT {
		t.Fatalf("scoped staff must publish into their own department, got %s", dto.Department)
	}
}

func TestCreateValidatesPayload(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	admin := policy.Actor{UserID: uuid.New(), Role: enums.RoleAdmin}

	_, err := svc.Create(context.Background(), admin, CreateInput{
		Type: enums.ResourceTypePDF,
		URL:  "https://example.edu/guide.pdf",
	})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), admin, CreateInput{
		Title: "Guide",
		Type:  enums.ResourceType("Podcast"),
		URL:   "https://example.edu/guide.mp3",
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}
