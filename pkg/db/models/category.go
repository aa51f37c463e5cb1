package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the two-level catalog tree.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Title     string     `gorm:"column:title;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	IconURL   string     `gorm:"column:icon_url;not null;default:''"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	SortIndex int        `gorm:"column:sort_index;not null;default:0"`
	Children  []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
