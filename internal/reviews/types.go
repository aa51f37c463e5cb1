package reviews

import (
	"time"

	"github.com/google/uuid"
)

// MaxBodyLength caps review text.
const MaxBodyLength = 3000

// CreateInput is the payload for posting a review.
type CreateInput struct {
	ProductID  uuid.UUID
	UserID     uuid.UUID
	AuthorName string `json:"author_name" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

// DTO is one review in a listing.
type DTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// PageDTO is a newest-first page of reviews.
type PageDTO struct {
	Items      []DTO `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
}
