package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sort keys accepted by the product listing.
const (
	SortPrice      = "price"
	SortNewest     = "newest"
	SortReviews    = "reviews"
	SortPopularity = "popularity"
)

// ProductFilter narrows the product listing.
type ProductFilter struct {
	CategoryID   *uuid.UUID
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Title        string
	InStock      bool
	FreeDelivery bool
	Tag          string
	Sort         string
	Descending   bool
}

// ProductSummary is one row of the product listing.
type ProductSummary struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	ImageURL     string          `json:"image_url"`
	Tags         []string        `json:"tags"`
	MinPrice     decimal.Decimal `json:"min_price"`
	ReviewsCount int             `json:"reviews_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ViewedDTO is one row of a user's browsing history.
type ViewedDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// ProductPage is a paginated listing result.
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int64            `json:"total"`
}

// ListingDTO is one seller offer on a product detail page.
type ListingDTO struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	SellerName   string          `json:"seller_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	FreeDelivery bool            `json:"free_delivery"`
	IsLimited    bool            `json:"is_limited"`
}

// AttributeDTO is one characteristic row on a product detail page.
type AttributeDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
	Group string `json:"group"`
}

// ProductDetail is the full product payload.
type ProductDetail struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url"`
	Tags         []string        `json:"tags"`
	Attributes   []AttributeDTO  `json:"attributes"`
	Listings     []ListingDTO    `json:"listings"`
	AveragePrice decimal.Decimal `json:"average_price"`
	// listing id of the cheapest offer, nil when the product has none
	BestListingID *uuid.UUID `json:"best_listing_id,omitempty"`
}

// CategoryNode is one node of the category tree.
type CategoryNode struct {
	ID       uuid.UUID      `json:"id"`
	Title    string         `json:"title"`
	Slug     string         `json:"slug"`
	IconURL  string         `json:"icon_url"`
	Children []CategoryNode `json:"children,omitempty"`
}

// PopularCategory is a landing tile: a top category with its cheapest price.
type PopularCategory struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	IconURL      string          `json:"icon_url"`
	ProductCount int             `json:"product_count"`
	MinPrice     decimal.Decimal `json:"min_price"`
}
