package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

// Repository persists user carts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateCart returns the user's cart, creating it on first use. Two
// concurrent first requests may race; the unique index makes one of them
// find the other's row.
func (r *Repository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO carts (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`, userID).
		Error
	if err != nil {
		return nil, err
	}
	var cart models.Cart
	err = r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindCartWithItems loads the user's cart with its lines, product and seller
// included. Returns gorm.ErrRecordNotFound for users without a cart.
func (r *Repository) FindCartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items.SellerProduct.Product").
		Preload("Items.SellerProduct.Seller").
		First(&cart, "user_id = ?", userID).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem adds quantity to an existing line or creates it with the given
// price snapshot. An existing line keeps its original snapshot.
func (r *Repository) UpsertItem(ctx context.Context, cartID, sellerProductID uuid.UUID, quantity int, price decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO cart_items (cart_id, seller_product_id, quantity, price) VALUES (?, ?, ?, ?)
ON CONFLICT (cart_id, seller_product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			cartID, sellerProductID, quantity, price).
		Error
}

// SetItemQuantity overwrites a line's quantity. Reports gorm.ErrRecordNotFound
// when the line does not exist.
func (r *Repository) SetItemQuantity(ctx context.Context, cartID, sellerProductID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND seller_product_id = ?", cartID, sellerProductID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItem removes a line from the cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, sellerProductID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND seller_product_id = ?", cartID, sellerProductID).
		Delete(&models.CartItem{}).
		Error
}

// ClearCart removes every line of a cart.
func (r *Repository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).
		Error
}

// FindListing loads a seller offer with its product.
func (r *Repository) FindListing(ctx context.Context, sellerProductID uuid.UUID) (*models.SellerProduct, error) {
	var listing models.SellerProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Seller").
		First(&listing, "id = ?", sellerProductID).
		Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
