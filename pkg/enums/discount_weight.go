package enums

import "fmt"

// DiscountWeight is the merchandising priority attached to a discount. It is
// persisted and surfaced to admins but does not change which discount wins;
// resolution always picks the cheapest cart.
type DiscountWeight string

const (
	DiscountWeightLow    DiscountWeight = "low"
	DiscountWeightMedium DiscountWeight = "medium"
	DiscountWeightHigh   DiscountWeight = "high"
)

var validDiscountWeights = []DiscountWeight{
	DiscountWeightLow,
	DiscountWeightMedium,
	DiscountWeightHigh,
}

// IsValid reports whether the value is a known DiscountWeight.
func (d DiscountWeight) IsValid() bool {
	for _, candidate := range validDiscountWeights {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountWeight converts the raw string to DiscountWeight.
func ParseDiscountWeight(value string) (DiscountWeight, error) {
	for _, candidate := range validDiscountWeights {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount weight %q", value)
}
