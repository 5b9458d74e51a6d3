package enums

import "fmt"

// TShirtSize is the shirt size requested by an attendee.
type TShirtSize string

const (
	TShirtSizeS   TShirtSize = "S"
	TShirtSizeM   TShirtSize = "M"
	TShirtSizeL   TShirtSize = "L"
	TShirtSizeXL  TShirtSize = "XL"
	TShirtSize2XL TShirtSize = "2XL"
)

var validTShirtSizes = []TShirtSize{
	TShirtSizeS,
	TShirtSizeM,
	TShirtSizeL,
	TShirtSizeXL,
	TShirtSize2XL,
}

// String implements fmt.Stringer.
func (t TShirtSize) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TShirtSize.
func (t TShirtSize) IsValid() bool {
	for _, candidate := range validTShirtSizes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTShirtSize converts raw input into a TShirtSize.
func ParseTShirtSize(value string) (TShirtSize, error) {
	for _, candidate := range validTShirtSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid t-shirt size %q", value)
}
