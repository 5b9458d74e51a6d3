package enums

import "fmt"

// RegistrationRole captures how a person participates in the event.
type RegistrationRole string

const (
	RegistrationRoleParticipant RegistrationRole = "participant"
	RegistrationRoleVolunteer   RegistrationRole = "volunteer"
	RegistrationRoleBoth        RegistrationRole = "both"
)

var validRegistrationRoles = []RegistrationRole{
	RegistrationRoleParticipant,
	RegistrationRoleVolunteer,
	RegistrationRoleBoth,
}

// String implements fmt.Stringer.
func (r RegistrationRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RegistrationRole.
func (r RegistrationRole) IsValid() bool {
	for _, candidate := range validRegistrationRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsVolunteer reports whether the role includes volunteer duties.
func (r RegistrationRole) IsVolunteer() bool {
	return r == RegistrationRoleVolunteer || r == RegistrationRoleBoth
}

// ParseRegistrationRole converts raw input into a RegistrationRole.
func ParseRegistrationRole(value string) (RegistrationRole, error) {
	for _, candidate := range validRegistrationRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid registration role %q", value)
}
