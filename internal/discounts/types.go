package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/enums"
)

// Discount kinds as they appear in API paths and payloads.
const (
	KindProduct = "product"
	KindBundle  = "bundle"
	KindCart    = "cart"
)

// CartLine is the resolver's view of one cart line. Price is the unit price
// snapshot the cart carries.
type CartLine struct {
	ProductID  uuid.UUID
	CategoryID uuid.UUID
	Quantity   int
	Price      decimal.Decimal
}

// CartSnapshot is the input to discount resolution.
type CartSnapshot struct {
	Lines []CartLine
}

// TotalQuantity is the number of units across all lines.
func (c CartSnapshot) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the undiscounted cart subtotal.
func (c CartSnapshot) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// BaseInput carries the fields shared by every discount kind.
type BaseInput struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Weight      enums.DiscountWeight `json:"weight"`
	ValidFrom   time.Time            `json:"valid_from" validate:"required"`
	ValidTo     time.Time            `json:"valid_to" validate:"required"`
	IsActive    bool                 `json:"is_active"`
}

// ProductDiscountInput creates or replaces a percentage discount.
type ProductDiscountInput struct {
	BaseInput
	Percent     int         `json:"percent" validate:"required"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

// BundleGroupInput is one side of a bundle.
type BundleGroupInput struct {
	ProductIDs  []uuid.UUID `json:"product_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

// BundleDiscountInput creates or replaces a two-group bundle discount.
type BundleDiscountInput struct {
	BaseInput
	Amount   decimal.Decimal  `json:"amount"`
	GroupOne BundleGroupInput `json:"group_one"`
	GroupTwo BundleGroupInput `json:"group_two"`
}

// CartDiscountInput creates or replaces a whole-cart repricing discount.
type CartDiscountInput struct {
	BaseInput
	DiscountPrice decimal.Decimal  `json:"discount_price"`
	MinItems      *int             `json:"min_items"`
	MaxItems      *int             `json:"max_items"`
	MinTotal      *decimal.Decimal `json:"min_total"`
	MaxTotal      *decimal.Decimal `json:"max_total"`
}

// SummaryDTO is one row of the public discount listing.
type SummaryDTO struct {
	Kind        string               `json:"kind"`
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Weight      enums.DiscountWeight `json:"weight"`
	ValidFrom   time.Time            `json:"valid_from"`
	ValidTo     time.Time            `json:"valid_to"`
	IsActive    bool                 `json:"is_active"`
}

// ListDTO groups the public listing by kind.
type ListDTO struct {
	Product []SummaryDTO `json:"product"`
	Bundle  []SummaryDTO `json:"bundle"`
	Cart    []SummaryDTO `json:"cart"`
}
