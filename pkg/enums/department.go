package enums

import "fmt"

// Department represents an academic department that owns equipment and users.
type Department string

const (
	DepartmentRenewableEnergy Department = "Renewable Energy"
	DepartmentMechatronic     Department = "Mechatronic"
	DepartmentICT             Department = "ICT"
	DepartmentElectronic      Department = "Electronic and Telecommunication"

	// DepartmentAll marks institution-wide resources rather than an actual department.
	DepartmentAll Department = "All"
)

var validDepartments = []Department{
	DepartmentRenewableEnergy,
	DepartmentMechatronic,
	DepartmentICT,
	DepartmentElectronic,
}

// Departments returns the real departments, excluding the "All" sentinel.
func Departments() []Department {
	out := make([]Department, len(validDepartments))
	copy(out, validDepartments)
	return out
}

// String implements fmt.Stringer.
func (d Department) String() string {
	return string(d)
}

// IsValid reports whether the value is a known Department (or the "All" sentinel).
func (d Department) IsValid() bool {
	if d == DepartmentAll {
		return true
	}
	for _, candidate := range validDepartments {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDepartment converts raw input into a Department.
func ParseDepartment(value string) (Department, error) {
	if value == string(DepartmentAll) {
		return DepartmentAll, nil
	}
	for _, candidate := range validDepartments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid department %q", value)
}
