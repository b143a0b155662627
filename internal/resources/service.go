package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
)

// Service exposes learning resource operations.
type Service interface {
	List(ctx context.Context, actor *policy.Actor, filter ListFilter) (*ListResult, error)
	Create(ctx context.Context, actor policy.Actor, input CreateInput) (*ResourceDTO, error)
}

// CreateInput holds the validated payload to publish a resource.
type CreateInput struct {
	Title       string
	Type        enums.ResourceType
	URL         string
	Category    *string
	Department  *enums.Department
	Duration    *string
	Size        *string
	Thumbnail   *string
	IsEssential bool
}

type resourceRepo interface {
	List(ctx context.Context, filter ListFilter) ([]models.Resource, int64, error)
	Create(ctx context.Context, resource *models.Resource) (*models.Resource, error)
}

type service struct {
	repo resourceRepo
}

// NewService constructs a resources service instance.
func NewService(repo resourceRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("resource repository required")
	}
	return &service{repo: repo}, nil
}

// List returns resources. The listing is public; there is no per-actor
// narrowing, the actor is accepted for parity with the other read paths.
func (s *service) List(ctx context.Context, actor *policy.Actor, filter ListFilter) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing resources")
	}
	return &ListResult{Resources: fromModels(rows), Meta: pagination.BuildMeta(filter.Page, total)}, nil
}

// Create publishes a resource. Resources have no edit or delete lifecycle.
func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*ResourceDTO, error) {
	if err := policy.Require(actor, policy.CapPublishResources); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and url are required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown resource type")
	}

	department := enums.DepartmentAll
	if requested := policy.ForceDepartment(actor, input.Department); requested != nil {
		if !requested.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
		}
		department = *requested
	}

	resource := &models.Resource{
		Title:       strings.TrimSpace(input.Title),
		Type:        input.Type,
		URL:         strings.TrimSpace(input.URL),
		Category:    input.Category,
		Department:  department,
		Duration:    input.Duration,
		Size:        input.Size,
		Thumbnail:   input.Thumbnail,
		IsEssential: input.IsEssential,
	}
	created, err := s.repo.Create(ctx, resource)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating resource")
	}
	return FromModel(created), nil
}
