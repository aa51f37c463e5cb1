package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/pagination"
)

// Repository persists product reviews.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListByProduct returns one newest-first page of a product's reviews plus the
// total count.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Page) ([]models.Review, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ?", productID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Review
	err := base.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ProductExists reports whether a product is present and available.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND available = ?", productID, true).
		Count(&count).
		Error
	return count > 0, err
}
