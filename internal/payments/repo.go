package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
)

// Repository reads and transitions orders through their payment states.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
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

// AttachStripeSession stores the hosted session id and moves the order to
// awaiting payment.
func (r *Repository) AttachStripeSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"stripe_session_id": sessionID,
			"status":            enums.OrderStatusAwaiting,
		}).
		Error
}

// SetStatus transitions the order status.
func (r *Repository) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).
		Error
}
