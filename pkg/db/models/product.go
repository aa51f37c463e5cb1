package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry. Sellers attach their own price and stock
// through SellerProduct rows; the product itself carries no price.
type Product struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	Title       string             `gorm:"column:title;not null"`
	Slug        string             `gorm:"column:slug;not null;uniqueIndex"`
	Description string             `gorm:"column:description;not null;default:''"`
	ImageURL    string             `gorm:"column:image_url;not null;default:''"`
	Tags        pq.StringArray     `gorm:"column:tags;type:text[];not null;default:'{}'"`
	Available   bool               `gorm:"column:available;not null;default:true"`
	Category    *Category          `gorm:"foreignKey:CategoryID"`
	Attributes  []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Listings    []SellerProduct    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews     []Review           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
