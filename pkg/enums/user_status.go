package enums

import "fmt"

// UserStatus reflects account lifecycle; users are deactivated, never deleted.
type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusOffline  UserStatus = "Offline"
	UserStatusInactive UserStatus = "Inactive"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusOffline,
	UserStatusInactive,
}

// String implements fmt.Stringer.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UserStatus.
func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUserStatus converts raw input into a UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
