package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a promotional tile on the landing page pointing at one product.
type Banner struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Text      string    `gorm:"column:text;not null;default:''"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true;index"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
