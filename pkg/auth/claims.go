package auth

import (
	"github.com/campuslabs/labstock-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Permissions mirrors the per-user capability flags stored on the account.
type Permissions struct {
	CanBorrow          bool `json:"can_borrow"`
	CanReserve         bool `json:"can_reserve"`
	CanAccessResources bool `json:"can_access_resources"`
	CanViewReports     bool `json:"can_view_reports"`
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.Role
	Department  *enums.Department
	Permissions Permissions
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID         `json:"user_id"`
	Role        enums.Role        `json:"role"`
	Department  *enums.Department `json:"department,omitempty"`
	Permissions Permissions       `json:"permissions"`
	jwt.RegisteredClaims
}
