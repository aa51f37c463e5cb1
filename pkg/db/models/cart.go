package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the persisted cart of an authenticated user. Guests carry their
// cart in the session until login merges it here.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one listing line. Price is the unit price snapshotted when the
// line was created; later listing price changes do not touch it.
type CartItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_listing"`
	SellerProductID uuid.UUID       `gorm:"column:seller_product_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_listing"`
	Quantity        int             `gorm:"column:quantity;not null"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	SellerProduct   *SellerProduct  `gorm:"foreignKey:SellerProductID"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
