package enums

import "fmt"

// PaymentKind selects how an order is paid.
type PaymentKind string

const (
	PaymentKindCard    PaymentKind = "card"
	PaymentKindAccount PaymentKind = "account"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindCard,
	PaymentKindAccount,
}

// IsValid reports whether the value is a known PaymentKind.
func (p PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentKind converts the raw string to PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
