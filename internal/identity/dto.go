package identity

import (
	"time"

	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID                 uuid.UUID         `json:"id"`
	FullName           string            `json:"full_name"`
	Email              string            `json:"email"`
	Role               enums.Role        `json:"role"`
	Department         *enums.Department `json:"department,omitempty"`
	StudentID          *string           `json:"student_id,omitempty"`
	Avatar             *string           `json:"avatar,omitempty"`
	Status             enums.UserStatus  `json:"status"`
	CanBorrow          bool              `json:"can_borrow"`
	CanReserve         bool              `json:"can_reserve"`
	CanAccessResources bool              `json:"can_access_resources"`
	CanViewReports     bool              `json:"can_view_reports"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ListResult bundles a user page with pagination metadata.
type ListResult struct {
	Users []UserDTO       `json:"users"`
	Meta  pagination.Meta `json:"meta"`
}

// CreatedUserDTO is returned from admin creation; TempPassword is only set
// when the service generated one.
type CreatedUserDTO struct {
	UserDTO
	TempPassword *string `json:"temp_password,omitempty"`
}

// FromModel converts the persisted user into its DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                 u.ID,
		FullName:           u.FullName,
		Email:              u.Email,
		Role:               u.Role,
		Department:         u.Department,
		StudentID:          u.StudentID,
		Avatar:             u.Avatar,
		Status:             u.Status,
		CanBorrow:          u.CanBorrow,
		CanReserve:         u.CanReserve,
		CanAccessResources: u.CanAccessResources,
		CanViewReports:     u.CanViewReports,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func fromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
