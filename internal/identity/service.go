package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuslabs/labstock-backend/internal/policy"
	"github.com/campuslabs/labstock-backend/pkg/config"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/pagination"
	"github.com/campuslabs/labstock-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 12

// CreateUserInput holds the validated payload for admin user creation.
type CreateUserInput struct {
	FullName           string
	Email              string
	Password           *string
	Role               enums.Role
	Department         *enums.Department
	StudentID          *string
	Avatar             *string
	CanBorrow          *bool
	CanReserve         *bool
	CanAccessResources *bool
	CanViewReports     *bool
}

// UpdateUserInput holds optional mutation values. Passwords are never merged
// through this path.
type UpdateUserInput struct {
	FullName           *string
	Email              *string
	Role               *enums.Role
	Department         *enums.Department
	StudentID          *string
	Avatar             *string
	Status             *enums.UserStatus
	CanBorrow          *bool
	CanReserve         *bool
	CanAccessResources *bool
	CanViewReports     *bool
}

type userStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.UserStatus) error
}

// Service exposes administrative user management.
type Service interface {
	List(ctx context.Context, actor policy.Actor, filter ListFilter) (*ListResult, error)
	Create(ctx context.Context, actor policy.Actor, input CreateUserInput) (*CreatedUserDTO, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Deactivate(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type service struct {
	repo        userStore
	passwordCfg config.PasswordConfig
}

// NewService constructs an identity service instance.
func NewService(repo userStore, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

// List returns users newest first, password hashes excluded.
func (s *service) List(ctx context.Context, actor policy.Actor, filter ListFilter) (*ListResult, error) {
	if err := policy.Require(actor, policy.CapManageUsers); err != nil {
		return nil, err
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}
	return &ListResult{Users: fromModels(rows), Meta: pagination.BuildMeta(filter.Page, total)}, nil
}

// Create registers an account. When no password is supplied a temporary one is
// generated and returned exactly once.
func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateUserInput) (*CreatedUserDTO, error) {
	if err := policy.Require(actor, policy.CapManageUsers); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name and email are required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	if input.Department != nil && !input.Department.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	if input.StudentID != nil && *input.StudentID != "" {
		taken, err = s.repo.ExistsByStudentID(ctx, *input.StudentID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking student id")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "student id already registered")
		}
	}

	password := ""
	var tempPassword *string
	if input.Password != nil && *input.Password != "" {
		password = *input.Password
	} else {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating temp password")
		}
		password = generated
		tempPassword = &generated
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		FullName:           strings.TrimSpace(input.FullName),
		Email:              email,
		PasswordHash:       hash,
		Role:               input.Role,
		Department:         input.Department,
		StudentID:          input.StudentID,
		Avatar:             input.Avatar,
		Status:             enums.UserStatusActive,
		CanBorrow:          true,
		CanReserve:         true,
		CanAccessResources: true,
	}
	if input.CanBorrow != nil {
		user.CanBorrow = *input.CanBorrow
	}
	if input.CanReserve != nil {
		user.CanReserve = *input.CanReserve
	}
	if input.CanAccessResources != nil {
		user.CanAccessResources = *input.CanAccessResources
	}
	if input.CanViewReports != nil {
		user.CanViewReports = *input.CanViewReports
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	return &CreatedUserDTO{UserDTO: *FromModel(created), TempPassword: tempPassword}, nil
}

// Update merges the provided fields. The password hash is never touched here.
func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if err := policy.Require(actor, policy.CapManageUsers); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			user.Email = email
		}
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
		}
		user.Role = *input.Role
	}
	if input.Department != nil {
		user.Department = input.Department
	}
	if input.StudentID != nil {
		user.StudentID = input.StudentID
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status")
		}
		user.Status = *input.Status
	}
	if input.CanBorrow != nil {
		user.CanBorrow = *input.CanBorrow
	}
	if input.CanReserve != nil {
		user.CanReserve = *input.CanReserve
	}
	if input.CanAccessResources != nil {
		user.CanAccessResources = *input.CanAccessResources
	}
	if input.CanViewReports != nil {
		user.CanViewReports = *input.CanViewReports
	}

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user")
	}
	return FromModel(saved), nil
}

// Deactivate soft-deletes the account by flipping it to Inactive. Deactivating
// yourself or an already-Inactive account is rejected.
func (s *service) Deactivate(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := policy.Require(actor, policy.CapManageUsers); err != nil {
		return err
	}
	if actor.UserID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if user.Status == enums.UserStatusInactive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "user is already inactive")
	}

	if err := s.repo.SetStatus(ctx, id, enums.UserStatusInactive); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating user")
	}
	return nil
}
