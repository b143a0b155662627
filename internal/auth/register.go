package auth

import (
	"context"
	"strings"

	"github.com/campuslabs/labstock-backend/internal/identity"
	"github.com/campuslabs/labstock-backend/pkg/config"
	"github.com/campuslabs/labstock-backend/pkg/db"
	"github.com/campuslabs/labstock-backend/pkg/db/models"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/campuslabs/labstock-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterRequest contains the payload for self-service account creation.
// Accounts created this way are always students; staff accounts come from the
// admin user management endpoints.
type RegisterRequest struct {
	FullName   string            `json:"full_name" validate:"required"`
	Email      string            `json:"email" validate:"required,email"`
	Password   string            `json:"password" validate:"required,min=8"`
	Department *enums.Department `json:"department,omitempty"`
	StudentID  *string           `json:"student_id,omitempty"`
}

// RegisterService handles the self-registration transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	SessionManager sessionManager
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
}

type registerService struct {
	db          *db.Client
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	return &registerService{
		db:          params.DB,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if req.Department != nil && !req.Department.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := identity.NewRepository(tx)

		taken, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}

		if req.StudentID != nil && strings.TrimSpace(*req.StudentID) != "" {
			taken, err := repo.ExistsByStudentID(ctx, *req.StudentID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check student id")
			}
			if taken {
				return pkgerrors.New(pkgerrors.CodeConflict, "student id already registered")
			}
		}

		user, err = repo.Create(ctx, &models.User{
			FullName:           strings.TrimSpace(req.FullName),
			Email:              email,
			PasswordHash:       passwordHash,
			Role:               enums.RoleStudent,
			Department:         req.Department,
			StudentID:          req.StudentID,
			Status:             enums.UserStatusActive,
			CanBorrow:          true,
			CanReserve:         true,
			CanAccessResources: true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return mintSessionResponse(ctx, s.jwtCfg, s.session, user)
}
