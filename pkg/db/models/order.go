package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/enums"
)

// Order is a confirmed checkout. Item rows carry title and price snapshots so
// later catalog edits cannot rewrite order history.
type Order struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	FullName        string             `gorm:"column:full_name;not null"`
	Email           string             `gorm:"column:email;not null"`
	Phone           string             `gorm:"column:phone;not null;default:''"`
	DeliveryKind    enums.DeliveryKind `gorm:"column:delivery_kind;not null"`
	City            string             `gorm:"column:city;not null"`
	Address         string             `gorm:"column:address;not null"`
	PaymentKind     enums.PaymentKind  `gorm:"column:payment_kind;not null"`
	Status          enums.OrderStatus  `gorm:"column:status;not null;default:'pending';index"`
	Comment         string             `gorm:"column:comment;not null;default:''"`
	DeliveryCost    decimal.Decimal    `gorm:"column:delivery_cost;type:numeric(12,2);not null"`
	Subtotal        decimal.Decimal    `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount        decimal.Decimal    `gorm:"column:discount;type:numeric(12,2);not null"`
	Total           decimal.Decimal    `gorm:"column:total;type:numeric(12,2);not null"`
	StripeSessionID string             `gorm:"column:stripe_session_id;not null;default:'';index"`
	Items           []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one purchased line.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SellerID  *uuid.UUID      `gorm:"column:seller_id;type:uuid"`
	Title     string          `gorm:"column:title;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
