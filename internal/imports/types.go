package imports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one seller listing row of an import file.
type Item struct {
	SellerID  uuid.UUID       `json:"seller_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// Result summarizes one processed file.
type Result struct {
	FileName  string
	Processed int
	Failed    int
	MovedTo   string
}
