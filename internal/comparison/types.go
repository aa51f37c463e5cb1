package comparison

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ColumnDTO is one product column of the comparison table.
type ColumnDTO struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	ImageURL     string          `json:"image_url"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

// RowDTO is one characteristic row. Values align with the table's product
// columns. Same marks rows identical across products; clients hide them by
// default.
type RowDTO struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Same   bool     `json:"same"`
}

// GroupDTO is one characteristic group. Hidden groups only contain rows with
// identical values.
type GroupDTO struct {
	Name   string   `json:"name"`
	Rows   []RowDTO `json:"rows"`
	Hidden bool     `json:"hidden"`
}

// TableDTO is the comparison table. When fewer than two products are selected
// Enough is false and only Count is meaningful.
type TableDTO struct {
	Count    int         `json:"count"`
	Enough   bool        `json:"enough"`
	Products []ColumnDTO `json:"products,omitempty"`
	Groups   []GroupDTO  `json:"groups,omitempty"`
}
