package comparison

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository loads the products behind a comparison selection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindProducts returns the selected products with their characteristics and
// seller offers. Missing ids are silently absent from the result.
func (r *Repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes.Attribute").
		Preload("Listings").
		Where("id IN ?", ids).
		Find(&products).
		Error
	return products, err
}
