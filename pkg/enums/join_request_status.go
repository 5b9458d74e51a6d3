package enums

import "fmt"

// JoinRequestStatus tracks the lifecycle of a team join request.
type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusAccepted JoinRequestStatus = "accepted"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

var validJoinRequestStatuses = []JoinRequestStatus{
	JoinRequestStatusPending,
	JoinRequestStatusAccepted,
	JoinRequestStatusRejected,
}

// String implements fmt.Stringer.
func (s JoinRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known JoinRequestStatus.
func (s JoinRequestStatus) IsValid() bool {
	for _, candidate := range validJoinRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request can no longer change state.
func (s JoinRequestStatus) IsTerminal() bool {
	return s == JoinRequestStatusAccepted || s == JoinRequestStatusRejected
}

// ParseJoinRequestStatus converts raw input into a JoinRequestStatus.
func ParseJoinRequestStatus(value string) (JoinRequestStatus, error) {
	for _, candidate := range validJoinRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid join request status %q", value)
}
