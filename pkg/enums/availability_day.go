package enums

import "fmt"

// AvailabilityDay is one of the event days a volunteer can sign up for.
type AvailabilityDay string

const (
	AvailabilityDaySetup   AvailabilityDay = "Setup Day"
	AvailabilityDayOne     AvailabilityDay = "Day 1"
	AvailabilityDayTwo     AvailabilityDay = "Day 2"
	AvailabilityDayThree   AvailabilityDay = "Day 3"
	AvailabilityDayCleanup AvailabilityDay = "Cleanup Day"
)

var validAvailabilityDays = []AvailabilityDay{
	AvailabilityDaySetup,
	AvailabilityDayOne,
	AvailabilityDayTwo,
	AvailabilityDayThree,
	AvailabilityDayCleanup,
}

// AvailabilityDays returns every event day in schedule order.
func AvailabilityDays() []AvailabilityDay {
	out := make([]AvailabilityDay, len(validAvailabilityDays))
	copy(out, validAvailabilityDays)
	return out
}

// String implements fmt.Stringer.
func (d AvailabilityDay) String() string {
	return string(d)
}

// IsValid reports whether the value is a known AvailabilityDay.
func (d AvailabilityDay) IsValid() bool {
	for _, candidate := range validAvailabilityDays {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseAvailabilityDay converts raw input into an AvailabilityDay.
func ParseAvailabilityDay(value string) (AvailabilityDay, error) {
	for _, candidate := range validAvailabilityDays {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability day %q", value)
}
