package enums

import "fmt"

// DeliveryKind selects the delivery option chosen at checkout.
type DeliveryKind string

const (
	DeliveryKindRegular DeliveryKind = "regular"
	DeliveryKindExpress DeliveryKind = "express"
)

var validDeliveryKinds = []DeliveryKind{
	DeliveryKindRegular,
	DeliveryKindExpress,
}

// IsValid reports whether the value is a known DeliveryKind.
func (d DeliveryKind) IsValid() bool {
	for _, candidate := range validDeliveryKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryKind converts the raw string to DeliveryKind.
func ParseDeliveryKind(value string) (DeliveryKind, error) {
	for _, candidate := range validDeliveryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery kind %q", value)
}
