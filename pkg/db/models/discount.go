package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/enums"
)

// ProductDiscount cuts a percentage off matching cart lines.
type ProductDiscount struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string                  `gorm:"column:title;not null"`
	Description string                  `gorm:"column:description;not null;default:''"`
	Percent     int                     `gorm:"column:percent;not null"`
	Weight      enums.DiscountWeight    `gorm:"column:weight;not null;default:'low'"`
	ValidFrom   time.Time               `gorm:"column:valid_from;not null"`
	ValidTo     time.Time               `gorm:"column:valid_to;not null"`
	IsActive    bool                    `gorm:"column:is_active;not null;default:true"`
	Targets     []ProductDiscountTarget `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductDiscountTarget points a product discount at a product or a category.
// Exactly one of ProductID and CategoryID is set.
type ProductDiscountTarget struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DiscountID uuid.UUID  `gorm:"column:discount_id;type:uuid;not null;index"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid;index"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid;index"`
}

// BundleDiscount takes a fixed amount off the cart when the cart holds at
// least one item from group 1 and one from group 2.
type BundleDiscount struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string                `gorm:"column:title;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Weight      enums.DiscountWeight  `gorm:"column:weight;not null;default:'low'"`
	ValidFrom   time.Time             `gorm:"column:valid_from;not null"`
	ValidTo     time.Time             `gorm:"column:valid_to;not null"`
	IsActive    bool                  `gorm:"column:is_active;not null;default:true"`
	Entries     []BundleDiscountEntry `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BundleDiscountEntry places a product or category into one of a bundle's two
// groups. GroupNo is 1 or 2; exactly one of ProductID and CategoryID is set.
type BundleDiscountEntry struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DiscountID uuid.UUID  `gorm:"column:discount_id;type:uuid;not null;index:idx_bundle_discount_entries_discount"`
	GroupNo    int16      `gorm:"column:group_no;not null;index:idx_bundle_discount_entries_discount"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
}

// CartDiscount reprices carts whose size or subtotal falls inside the
// configured ranges: the cart is sold for DiscountPrice instead of its
// subtotal. Nil bounds are open.
type CartDiscount struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string               `gorm:"column:title;not null"`
	Description   string               `gorm:"column:description;not null;default:''"`
	DiscountPrice decimal.Decimal      `gorm:"column:discount_price;type:numeric(12,2);not null"`
	Weight        enums.DiscountWeight `gorm:"column:weight;not null;default:'low'"`
	MinItems      *int                 `gorm:"column:min_items"`
	MaxItems      *int                 `gorm:"column:max_items"`
	MinTotal      *decimal.Decimal     `gorm:"column:min_total;type:numeric(12,2)"`
	MaxTotal      *decimal.Decimal     `gorm:"column:max_total;type:numeric(12,2)"`
	ValidFrom     time.Time            `gorm:"column:valid_from;not null"`
	ValidTo       time.Time            `gorm:"column:valid_to;not null"`
	IsActive      bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
