package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository persists promo banners.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns every active banner with its product.
func (r *Repository) ListActive(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a banner.
func (r *Repository) Create(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

// Update saves banner changes.
func (r *Repository) Update(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

// Find loads one banner.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

// Delete removes a banner.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id).Error
}
