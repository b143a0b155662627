package policy

import (
	"errors"
	"testing"

	"github.com/campuslabs/labstock-backend/pkg/auth"
	"github.com/campuslabs/labstock-backend/pkg/enums"
	pkgerrors "github.com/campuslabs/labstock-backend/pkg/errors"
	"github.com/google/uuid"
)

func deptPtr(d enums.Department) *enums.Department {
	return &d
}

func TestRoleCapabilities(t *testing.T) {
	admin := Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	if !admin.Can(CapManageAllDepartments) || !admin.Can(CapManageUsers) {
		t.Fatal("admin should hold global management capabilities")
	}

	student := Actor{UserID: uuid.New(), Role: enums.RoleStudent}
	if student.Can(CapManageOwnDepartment) || student.Can(CapManageUsers) {
		t.Fatal("student should not hold management capabilities")
	}
	if !student.Can(CapBorrow) || !student.Can(CapReserve) {
		t.Fatal("student should be able to borrow and reserve")
	}

	staff := Actor{UserID: uuid.New(), Role: enums.RoleLabStaff, Department: deptPtr(enums.DepartmentICT)}
	if staff.Can(CapManageAllDepartments) {
		t.Fatal("lab staff should not manage all departments")
	}
	if !staff.Can(CapManageOwnDepartment) {
		t.Fatal("lab staff should manage their own department")
	}
	if !staff.IsStaff() {
		t.Fatal("lab staff should be staff")
	}
	if student.IsStaff() {
		t.Fatal("student should not be staff")
	}

	hod := Actor{UserID: uuid.New(), Role: enums.RoleHOD}
	if !hod.Can(CapInstitutionReports) {
		t.Fatal("HOD should view institution reports")
	}
	if staff.Can(CapInstitutionReports) {
		t.Fatal("lab staff should not view institution reports")
	}

	lecturer := Actor{UserID: uuid.New(), Role: enums.RoleLecturer}
	if !lecturer.Can(CapPublishResources) {
		t.Fatal("lecturer should publish resources")
	}
	if lecturer.IsStaff() {
		t.Fatal("lecturer should not be staff")
	}

	unknown := Actor{UserID: uuid.New(), Role: enums.Role("Ghost")}
	if unknown.Can(CapBorrow) {
		t.Fatal("unknown role should hold no capabilities")
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	student := Actor{UserID: uuid.New(), Role: enums.RoleStudent}
	err := Require(student, CapManageUsers)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %s", typed.Code())
	}

	if err := Require(student, CapBorrow); err != nil {
		t.Fatalf("expected borrow to be allowed: %v", err)
	}
}

func TestDepartmentScope(t *testing.T) {
	admin := Actor{Role: enums.RoleAdmin, Department: deptPtr(enums.DepartmentICT)}
	if scope := DepartmentScope(admin); scope != nil {
		t.Fatalf("admin should be unrestricted, got %v", *scope)
	}

	staff := Actor{Role: enums.RoleHOD, Department: deptPtr(enums.DepartmentMechatronic)}
	scope := DepartmentScope(staff)
	if scope == nil || *scope != enums.DepartmentMechatronic {
		t.Fatalf("expected scoped department, got %v", scope)
	}

	student := Actor{Role: enums.RoleStudent, Department: deptPtr(enums.DepartmentICT)}
	if scope := DepartmentScope(student); scope != nil {
		t.Fatal("non-staff should not produce a management scope")
	}
}

func TestCanManageDepartment(t *testing.T) {
	admin := Actor{Role: enums.RoleAdmin}
	if !CanManageDepartment(admin, deptPtr(enums.DepartmentICT)) {
		t.Fatal("admin manages any department")
	}
	if !CanManageDepartment(admin, nil) {
		t.Fatal("admin manages department-less equipment")
	}

	staff := Actor{Role: enums.RoleLabStaff, Department: deptPtr(enums.DepartmentICT)}
	if !CanManageDepartment(staff, deptPtr(enums.DepartmentICT)) {
		t.Fatal("staff manages own department")
	}
	if CanManageDepartment(staff, deptPtr(enums.DepartmentMechatronic)) {
		t.Fatal("staff must not manage other departments")
	}
	if CanManageDepartment(staff, nil) {
		t.Fatal("staff must not manage unassigned equipment")
	}

	if err := RequireDepartment(staff, deptPtr(enums.DepartmentMechatronic)); err == nil {
		t.Fatal("expected forbidden for other department")
	}
}

func TestForceDepartment(t *testing.T) {
	requested := deptPtr(enums.DepartmentElectronic)

	admin := Actor{Role: enums.RoleAdmin}
	if got := ForceDepartment(admin, requested); got == nil || *got != enums.DepartmentElectronic {
		t.Fatal("admin keeps the requested department")
	}

	staff := Actor{Role: enums.RoleStockManager, Department: deptPtr(enums.DepartmentICT)}
	if got := ForceDepartment(staff, requested); got == nil || *got != enums.DepartmentICT {
		t.Fatal("scoped staff should have department forced to their own")
	}
}

func TestAccountFlagOverlays(t *testing.T) {
	actor := Actor{
		Role: enums.RoleStudent,
		Permissions: auth.Permissions{
			CanBorrow:  true,
			CanReserve: true,
		},
	}
	if !CanBorrowAndReserve(actor) {
		t.Fatal("expected borrow+reserve to be allowed")
	}

	actor.Permissions.CanReserve = false
	if CanBorrowAndReserve(actor) {
		t.Fatal("account flag should veto reserve")
	}

	lecturer := Actor{
		Role:        enums.RoleLecturer,
		Permissions: auth.Permissions{CanViewReports: true},
	}
	if !CanViewReports(lecturer) {
		t.Fatal("lecturer with flag should view reports")
	}
	lecturer.Permissions.CanViewReports = false
	if CanViewReports(lecturer) {
		t.Fatal("account flag should veto reports")
	}

	student := Actor{Role: enums.RoleStudent, Permissions: auth.Permissions{CanViewReports: true}}
	if CanViewReports(student) {
		t.Fatal("student role should not view reports even with the flag")
	}
}
