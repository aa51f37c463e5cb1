package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository encapsulates discount persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a discount repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ActiveProductDiscounts returns product discounts whose window contains now.
func (r *Repository) ActiveProductDiscounts(ctx context.Context, now time.Time) ([]models.ProductDiscount, error) {
	var rows []models.ProductDiscount
	err := r.db.WithContext(ctx).
		Preload("Targets").
		Where("is_active = ? AND valid_from <= ? AND valid_to > ?", true, now, now).
		Find(&rows).
		Error
	return rows, err
}

// ActiveBundleDiscounts returns bundle discounts whose window contains now.
func (r *Repository) ActiveBundleDiscounts(ctx context.Context, now time.Time) ([]models.BundleDiscount, error) {
	var rows []models.BundleDiscount
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("is_active = ? AND valid_from <= ? AND valid_to > ?", true, now, now).
		Find(&rows).
		Error
	return rows, err
}

// ActiveCartDiscounts returns cart discounts whose window contains now.
func (r *Repository) ActiveCartDiscounts(ctx context.Context, now time.Time) ([]models.CartDiscount, error) {
	var rows []models.CartDiscount
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND valid_from <= ? AND valid_to > ?", true, now, now).
		Find(&rows).
		Error
	return rows, err
}

// ListProductDiscounts returns every product discount with targets.
func (r *Repository) ListProductDiscounts(ctx context.Context) ([]models.ProductDiscount, error) {
	var rows []models.ProductDiscount
	err := r.db.WithContext(ctx).Preload("Targets").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListBundleDiscounts returns every bundle discount with entries.
func (r *Repository) ListBundleDiscounts(ctx context.Context) ([]models.BundleDiscount, error) {
	var rows []models.BundleDiscount
	err := r.db.WithContext(ctx).Preload("Entries").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListCartDiscounts returns every cart discount.
func (r *Repository) ListCartDiscounts(ctx context.Context) ([]models.CartDiscount, error) {
	var rows []models.CartDiscount
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// FindProductDiscount loads one product discount with targets.
func (r *Repository) FindProductDiscount(ctx context.Context, id uuid.UUID) (*models.ProductDiscount, error) {
	var row models.ProductDiscount
	if err := r.db.WithContext(ctx).Preload("Targets").First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBundleDiscount loads one bundle discount with entries.
func (r *Repository) FindBundleDiscount(ctx context.Context, id uuid.UUID) (*models.BundleDiscount, error) {
	var row models.BundleDiscount
	if err := r.db.WithContext(ctx).Preload("Entries").First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindCartDiscount loads one cart discount.
func (r *Repository) FindCartDiscount(ctx context.Context, id uuid.UUID) (*models.CartDiscount, error) {
	var row models.CartDiscount
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateProductDiscount inserts the discount with its target rows atomically.
func (r *Repository) CreateProductDiscount(ctx context.Context, discount *models.ProductDiscount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(discount).Error
	})
}

// CreateBundleDiscount inserts the discount with its entry rows atomically.
func (r *Repository) CreateBundleDiscount(ctx context.Context, discount *models.BundleDiscount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(discount).Error
	})
}

// CreateCartDiscount inserts the discount.
func (r *Repository) CreateCartDiscount(ctx context.Context, discount *models.CartDiscount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}

// DeleteProductDiscount removes the discount; target rows cascade.
func (r *Repository) DeleteProductDiscount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductDiscount{}, "id = ?", id).Error
}

// DeleteBundleDiscount removes the discount; entry rows cascade.
func (r *Repository) DeleteBundleDiscount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BundleDiscount{}, "id = ?", id).Error
}

// DeleteCartDiscount removes the discount.
func (r *Repository) DeleteCartDiscount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartDiscount{}, "id = ?", id).Error
}

// ProductCategories maps product ids to their category ids.
func (r *Repository) ProductCategories(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]uuid.UUID{}, nil
	}
	type row struct {
		ID         uuid.UUID `gorm:"column:id"`
		CategoryID uuid.UUID `gorm:"column:category_id"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "category_id").
		Where("id IN ?", ids).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, rec := range rows {
		out[rec.ID] = rec.CategoryID
	}
	return out, nil
}
