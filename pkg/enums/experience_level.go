package enums

import "fmt"

// ExperienceLevel is the self-reported skill level of a participant.
type ExperienceLevel string

const (
	ExperienceLevelBeginner     ExperienceLevel = "beginner"
	ExperienceLevelIntermediate ExperienceLevel = "intermediate"
	ExperienceLevelAdvanced     ExperienceLevel = "advanced"
)

var validExperienceLevels = []ExperienceLevel{
	ExperienceLevelBeginner,
	ExperienceLevelIntermediate,
	ExperienceLevelAdvanced,
}

// String implements fmt.Stringer.
func (e ExperienceLevel) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExperienceLevel.
func (e ExperienceLevel) IsValid() bool {
	for _, candidate := range validExperienceLevels {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExperienceLevel converts raw input into an ExperienceLevel.
func ParseExperienceLevel(value string) (ExperienceLevel, error) {
	for _, candidate := range validExperienceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid experience level %q", value)
}
