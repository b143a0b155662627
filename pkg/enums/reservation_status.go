package enums

import "fmt"

// ReservationStatus is a state in the reservation lifecycle.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "Pending"
	ReservationStatusApproved  ReservationStatus = "Approved"
	ReservationStatusBorrowed  ReservationStatus = "Borrowed"
	ReservationStatusReturned  ReservationStatus = "Returned"
	ReservationStatusOverdue   ReservationStatus = "Overdue"
	ReservationStatusCancelled ReservationStatus = "Cancelled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
	ReservationStatusBorrowed,
	ReservationStatusReturned,
	ReservationStatusOverdue,
	ReservationStatusCancelled,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusReturned || s == ReservationStatusCancelled
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
