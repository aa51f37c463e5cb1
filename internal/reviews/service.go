package reviews

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Page) ([]models.Review, int64, error)
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	Repo repository
}

// Service creates and lists product reviews.
type Service interface {
	Create(ctx context.Context, input CreateInput) (DTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (PageDTO, error)
}

type service struct {
	repo repository
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Create posts a review. Only signed-in users may review.
func (s *service) Create(ctx context.Context, input CreateInput) (DTO, error) {
	if input.UserID == uuid.Nil {
		return DTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to leave a review")
	}
	if input.ProductID == uuid.Nil {
		return DTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return DTO{}, pkgerrors.New(pkgerrors.CodeValidation, "review text is required").
			WithDetails(map[string]any{"field": "body"})
	}
	if len([]rune(body)) > MaxBodyLength {
		return DTO{}, pkgerrors.New(pkgerrors.CodeValidation, "review text is too long").
			WithDetails(map[string]any{"field": "body", "max_length": MaxBodyLength})
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return DTO{}, pkgerrors.New(pkgerrors.CodeValidation, "author name is required").
			WithDetails(map[string]any{"field": "author_name"})
	}

	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return DTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return DTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	review := &models.Review{
		ProductID:  input.ProductID,
		UserID:     input.UserID,
		AuthorName: author,
		Body:       body,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return DTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return toDTO(*review), nil
}

// ListByProduct returns a newest-first page of a product's reviews.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (PageDTO, error) {
	if productID == uuid.Nil {
		return PageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	page := pagination.Normalize(params)
	rows, total, err := s.repo.ListByProduct(ctx, productID, page)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	out := PageDTO{
		Page:       page.Number,
		TotalPages: pagination.TotalPages(total, page.Limit),
		Total:      total,
	}
	for _, row := range rows {
		out.Items = append(out.Items, toDTO(row))
	}
	return out, nil
}

func toDTO(review models.Review) DTO {
	return DTO{
		ID:         review.ID,
		ProductID:  review.ProductID,
		AuthorName: review.AuthorName,
		Body:       review.Body,
		CreatedAt:  review.CreatedAt,
	}
}
