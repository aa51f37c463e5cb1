package discounts

import (
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// productCandidate sums per-line percentage discounts. For each line a
// discount targeting the product directly wins over one targeting its
// category; among equals the highest percent applies. Lines nothing targets
// contribute zero.
func productCandidate(active []models.ProductDiscount, cart CartSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart.Lines {
		percent := bestPercentForLine(active, line)
		if percent == 0 {
			continue
		}
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal.Mul(decimal.NewFromInt(int64(percent))).Div(oneHundred))
	}
	return total
}

func bestPercentForLine(active []models.ProductDiscount, line CartLine) int {
	direct, byCategory := 0, 0
	for _, discount := range active {
		for _, target := range discount.Targets {
			switch {
			case target.ProductID != nil && *target.ProductID == line.ProductID:
				if discount.Percent > direct {
					direct = discount.Percent
				}
			case target.CategoryID != nil && *target.CategoryID == line.CategoryID:
				if discount.Percent > byCategory {
					byCategory = discount.Percent
				}
			}
		}
	}
	if direct > 0 {
		return direct
	}
	return byCategory
}

// cartCandidate reprices the whole cart: among discounts whose quantity and
// total ranges both contain the cart, the best saving is subtotal minus the
// discount price, floored at zero.
func cartCandidate(active []models.CartDiscount, cart CartSnapshot) decimal.Decimal {
	quantity := cart.TotalQuantity()
	subtotal := cart.TotalPrice()

	best := decimal.Zero
	for _, discount := range active {
		if !cartDiscountApplies(discount, quantity, subtotal) {
			continue
		}
		saving := subtotal.Sub(discount.DiscountPrice)
		if saving.IsNegative() {
			saving = decimal.Zero
		}
		if saving.GreaterThan(best) {
			best = saving
		}
	}
	return best
}

func cartDiscountApplies(discount models.CartDiscount, quantity int, subtotal decimal.Decimal) bool {
	if discount.MinItems != nil && quantity < *discount.MinItems {
		return false
	}
	if discount.MaxItems != nil && quantity > *discount.MaxItems {
		return false
	}
	if discount.MinTotal != nil && subtotal.LessThan(*discount.MinTotal) {
		return false
	}
	if discount.MaxTotal != nil && subtotal.GreaterThan(*discount.MaxTotal) {
		return false
	}
	return true
}

// bundleCandidate returns the largest bundle amount whose two groups are both
// represented in the cart. A cart touching only one group gets nothing.
func bundleCandidate(active []models.BundleDiscount, cart CartSnapshot) decimal.Decimal {
	best := decimal.Zero
	for _, discount := range active {
		if !groupMatched(discount.Entries, 1, cart) || !groupMatched(discount.Entries, 2, cart) {
			continue
		}
		if discount.Amount.GreaterThan(best) {
			best = discount.Amount
		}
	}
	return best
}

func groupMatched(entries []models.BundleDiscountEntry, groupNo int16, cart CartSnapshot) bool {
	for _, entry := range entries {
		if entry.GroupNo != groupNo {
			continue
		}
		for _, line := range cart.Lines {
			if entry.ProductID != nil && *entry.ProductID == line.ProductID {
				return true
			}
			if entry.CategoryID != nil && *entry.CategoryID == line.CategoryID {
				return true
			}
		}
	}
	return false
}

// bestOf picks the single winning candidate. Candidates never stack.
func bestOf(candidates ...decimal.Decimal) decimal.Decimal {
	best := decimal.Zero
	for _, candidate := range candidates {
		if candidate.GreaterThan(best) {
			best = candidate
		}
	}
	return best
}
