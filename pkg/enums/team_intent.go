package enums

import "fmt"

// TeamIntent is what the registrant wants to do about a team at signup.
type TeamIntent string

const (
	TeamIntentCreate TeamIntent = "create"
	TeamIntentJoin   TeamIntent = "join"
	TeamIntentNone   TeamIntent = "none"
)

var validTeamIntents = []TeamIntent{
	TeamIntentCreate,
	TeamIntentJoin,
	TeamIntentNone,
}

// String implements fmt.Stringer.
func (t TeamIntent) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TeamIntent.
func (t TeamIntent) IsValid() bool {
	for _, candidate := range validTeamIntents {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTeamIntent converts raw input into a TeamIntent.
func ParseTeamIntent(value string) (TeamIntent, error) {
	for _, candidate := range validTeamIntents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid team intent %q", value)
}
