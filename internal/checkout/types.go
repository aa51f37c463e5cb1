package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/enums"
)

// UserDataInput is checkout step one.
type UserDataInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
}

// DeliveryInput is checkout step two.
type DeliveryInput struct {
	Kind    string `json:"kind" validate:"required"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// PaymentInput is checkout step three.
type PaymentInput struct {
	Kind string `json:"kind" validate:"required"`
}

// ConfirmInput is checkout step four.
type ConfirmInput struct {
	Comment string `json:"comment"`
}

// DraftDTO echoes the accumulated checkout data back to the client.
type DraftDTO struct {
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DeliveryKind string `json:"delivery_kind,omitempty"`
	City         string `json:"city,omitempty"`
	Address      string `json:"address,omitempty"`
	PaymentKind  string `json:"payment_kind,omitempty"`
}

// OrderItemDTO is one snapshot line of a confirmed order.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderDTO is the confirmed order payload.
type OrderDTO struct {
	ID           uuid.UUID          `json:"id"`
	Status       enums.OrderStatus  `json:"status"`
	DeliveryKind enums.DeliveryKind `json:"delivery_kind"`
	PaymentKind  enums.PaymentKind  `json:"payment_kind"`
	DeliveryCost decimal.Decimal    `json:"delivery_cost"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	Discount     decimal.Decimal    `json:"discount"`
	Total        decimal.Decimal    `json:"total"`
	Items        []OrderItemDTO     `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
}
