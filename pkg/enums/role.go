package enums

import "fmt"

// Role represents a platform-wide user role.
type Role string

const (
	RoleStudent      Role = "Student"
	RoleLecturer     Role = "Lecturer"
	RoleAdmin        Role = "Admin"
	RoleLabStaff     Role = "Lab Staff"
	RoleHOD          Role = "HOD"
	RoleStockManager Role = "StockManager"
)

var validRoles = []Role{
	RoleStudent,
	RoleLecturer,
	RoleAdmin,
	RoleLabStaff,
	RoleHOD,
	RoleStockManager,
}

// Roles returns every known role in declaration order.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
