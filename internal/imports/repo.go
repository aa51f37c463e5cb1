package imports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository validates import references and writes listings and job rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SellerExists reports whether the seller is known.
func (r *Repository) SellerExists(ctx context.Context, sellerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("id = ?", sellerID).
		Count(&count).
		Error
	return count > 0, err
}

// ProductExists reports whether the product is known.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).
		Error
	return count > 0, err
}

// UpsertListing writes one seller offer, replacing price and quantity when
// the seller already lists the product.
func (r *Repository) UpsertListing(ctx context.Context, sellerID, productID uuid.UUID, price decimal.Decimal, quantity int) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO seller_products (seller_id, product_id, price, quantity) VALUES (?, ?, ?, ?)
ON CONFLICT (seller_id, product_id) DO UPDATE SET price = EXCLUDED.price, quantity = EXCLUDED.quantity, updated_at = now()`,
			sellerID, productID, price, quantity).
		Error
}

// CreateJob inserts the job row for a file being processed.
func (r *Repository) CreateJob(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// UpdateJob saves the job's final state.
func (r *Repository) UpdateJob(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}
