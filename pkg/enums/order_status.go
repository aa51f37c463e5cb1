package enums

import "fmt"

// OrderStatus tracks an order through checkout and payment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAwaiting  OrderStatus = "awaiting_payment"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "payment_failed"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusDelivered OrderStatus = "delivered"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaiting,
	OrderStatusPaid,
	OrderStatusFailed,
	OrderStatusCanceled,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts the raw string to OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
