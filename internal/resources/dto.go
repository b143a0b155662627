package resources

import (
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ResourceDTO is the transport shape for a learning resource.
type ResourceDTO struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Type        enums.ResourceType `json:"type"`
	URL         string             `json:"url"`
	Category    *string            `json:"category,omitempty"`
	Department  enums.Department   `json:"department"`
	Duration    *string            `json:"duration,omitempty"`
	Size        *string            `json:"size,omitempty"`
	Thumbnail   *string            `json:"thumbnail,omitempty"`
	IsEssential bool               `json:"is_essential"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ListResult bundles a resource page with pagination metadata.
type ListResult struct {
	Resources []ResourceDTO   `json:"resources"`
	Meta      pagination.Meta `json:"meta"`
}

// FromModel converts the persisted resource into its DTO.
func FromModel(r *models.Resource) *ResourceDTO {
	if r == nil {
		return nil
	}
	return &ResourceDTO{
		ID:          r.ID,
		Title:       r.Title,
		Type:        r.Type,
		URL:         r.URL,
		Category:    r.Category,
		Department:  r.Department,
		Duration:    r.Duration,
		Size:        r.Size,
		Thumbnail:   r.Thumbnail,
		IsEssential: r.IsEssential,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromModels(rows []models.Resource) []ResourceDTO {
	out := make([]ResourceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
