package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seller is a storefront merchant.
type Seller struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Description string    `gorm:"column:description;not null;default:''"`
	Email       string    `gorm:"column:email;not null;default:''"`
	Phone       string    `gorm:"column:phone;not null;default:''"`
	Address     string    `gorm:"column:address;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SellerProduct is one seller's offer for a product: price, stock and
// delivery terms.
type SellerProduct struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID     uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:idx_seller_products_seller_product"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_seller_products_seller_product"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null;default:0"`
	FreeDelivery bool            `gorm:"column:free_delivery;not null;default:false"`
	IsLimited    bool            `gorm:"column:is_limited;not null;default:false"`
	Seller       *Seller         `gorm:"foreignKey:SellerID"`
	Product      *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
