package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is one cart line. Price is the snapshot taken when the line was
// created, never re-fetched.
type ItemDTO struct {
	SellerProductID uuid.UUID       `json:"seller_product_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	Title           string          `json:"title"`
	ImageURL        string          `json:"image_url"`
	SellerName      string          `json:"seller_name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// DTO is the cart detail payload. Total is Subtotal minus the resolver's
// best discount.
type DTO struct {
	Items         []ItemDTO       `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
}
