package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer review on a product. Only authenticated users can
// write one; AuthorName is denormalized for display.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	AuthorName string    `gorm:"column:author_name;not null"`
	Body       string    `gorm:"column:body;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ViewedProduct records the most recent time a user opened a product page.
type ViewedProduct struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_viewed_products_user_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_viewed_products_user_product"`
	ViewedAt  time.Time `gorm:"column:viewed_at;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
}
