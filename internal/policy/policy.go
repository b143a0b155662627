package policy

import (
	"github.com/campuslabs/labstock-backend/pkg/auth"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/google/uuid"
)

// Capability is a named permission granted to roles rather than tested as
// role literals at call sites.
type Capability string

const (
	CapManageAllDepartments Capability = "manage_all_departments"
	CapManageOwnDepartment  Capability = "manage_own_department"
	CapViewReports          Capability = "view_reports"
	CapInstitutionReports   Capability = "institution_reports"
	CapManageUsers          Capability = "manage_users"
	CapPublishResources     Capability = "publish_resources"
	CapBorrow               Capability = "borrow"
	CapReserve              Capability = "reserve"
)

// Actor is the authenticated principal evaluated by every policy check.
type Actor struct {
	UserID      uuid.UUID
	Role        enums.Role
	Department  *enums.Department
	Permissions auth.Permissions
}

var roleCapabilities = map[enums.Role]map[Capability]bool{
	enums.RoleStudent: {
		CapBorrow:  true,
		CapReserve: true,
	},
	enums.RoleLecturer: {
		CapBorrow:           true,
		CapReserve:          true,
		CapViewReports:      true,
		CapPublishResources: true,
	},
	enums.RoleAdmin: {
		CapManageAllDepartments: true,
		CapManageOwnDepartment:  true,
		CapViewReports:          true,
		CapInstitutionReports:   true,
		CapManageUsers:          true,
		CapPublishResources:     true,
		CapBorrow:               true,
		CapReserve:              true,
	},
	enums.RoleLabStaff: {
		CapManageOwnDepartment: true,
		CapViewReports:         true,
		CapPublishResources:    true,
		CapBorrow:              true,
		CapReserve:             true,
	},
	enums.RoleHOD: {
		CapManageOwnDepartment: true,
		CapViewReports:         true,
		CapInstitutionReports:  true,
		CapPublishResources:    true,
		CapBorrow:              true,
		CapReserve:             true,
	},
	enums.RoleStockManager: {
		CapManageOwnDepartment: true,
		CapViewReports:         true,
		CapBorrow:              true,
		CapReserve:             true,
	},
}

// Can reports whether the actor's role grants the capability.
func (a Actor) Can(cap Capability) bool {
	caps, ok := roleCapabilities[a.Role]
	if !ok {
		return false
	}
	return caps[cap]
}

// IsStaff reports whether the actor can manage equipment in at least one department.
func (a Actor) IsStaff() bool {
	return a.Can(CapManageAllDepartments) || a.Can(CapManageOwnDepartment)
}

// Require returns a typed Forbidden error unless the actor holds the capability.
func Require(actor Actor, cap Capability) error {
	if actor.Can(cap) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
}

// DepartmentScope returns the department filter forced onto the actor's
// queries. Nil means unrestricted.
func DepartmentScope(actor Actor) *enums.Department {
	if actor.Can(CapManageAllDepartments) {
		return nil
	}
	if actor.Can(CapManageOwnDepartment) && actor.Department != nil {
		return actor.Department
	}
	return nil
}

// CanManageDepartment reports whether the actor may manage inventory owned by
// the given department.
func CanManageDepartment(actor Actor, dept *enums.Department) bool {
	if actor.Can(CapManageAllDepartments) {
		return true
	}
	if !actor.Can(CapManageOwnDepartment) {
		return false
	}
	if actor.Department == nil || dept == nil {
		return false
	}
	return *actor.Department == *dept
}

// RequireDepartment returns a Forbidden error unless the actor may manage the department.
func RequireDepartment(actor Actor, dept *enums.Department) error {
	if CanManageDepartment(actor, dept) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "department not managed by this account")
}

// ForceDepartment resolves the department a scoped actor is allowed to write.
// Unrestricted actors keep the requested department.
func ForceDepartment(actor Actor, requested *enums.Department) *enums.Department {
	if scope := DepartmentScope(actor); scope != nil {
		return scope
	}
	return requested
}

// CanBorrowAndReserve checks both the role capability and the per-account flags.
func CanBorrowAndReserve(actor Actor) bool {
	if !actor.Can(CapBorrow) || !actor.Can(CapReserve) {
		return false
	}
	return actor.Permissions.CanBorrow && actor.Permissions.CanReserve
}

// CanViewReports checks the role capability together with the account flag.
func CanViewReports(actor Actor) bool {
	return actor.Can(CapViewReports) && actor.Permissions.CanViewReports
}
