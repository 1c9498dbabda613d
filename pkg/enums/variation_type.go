package enums

import "fmt"

// VariationType distinguishes the option axes a product can carry.
type VariationType string

const (
	VariationTypeSize  VariationType = "size"
	VariationTypeColor VariationType = "color"
)

var validVariationTypes = []VariationType{
	VariationTypeSize,
	VariationTypeColor,
}

// String implements fmt.Stringer.
func (v VariationType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VariationType.
func (v VariationType) IsValid() bool {
	for _, candidate := range validVariationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariationType converts raw input into a VariationType.
func ParseVariationType(value string) (VariationType, error) {
	for _, candidate := range validVariationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variation type %q", value)
}
