package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository persists confirmed orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the order with its item snapshots on the caller's
// transaction.
func (r *Repository) CreateOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// ClearUserCart drops the user's cart lines on the caller's transaction.
func (r *Repository) ClearUserCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return tx.WithContext(ctx).
		Exec("DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = ?)", userID).
		Error
}

// FindOrderForUser loads one of the user's orders with its items.
func (r *Repository) FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersForUser returns the user's orders, newest first.
func (r *Repository) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).
		Error
	return orders, err
}
