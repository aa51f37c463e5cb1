package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/cache"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/pagination"
)

const (
	popularCategoriesLimit = 3
	popularProductsLimit   = 8
	limitedProductsLimit   = 16
	viewedHistoryLimit     = 20
)

type readCache interface {
	Get(ctx context.Context, key cache.Key, dest any) (bool, error)
	Set(ctx context.Context, key cache.Key, value any) error
	Invalidate(ctx context.Context, keys ...cache.Key) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   *Repository
	Cache  readCache
	Logger *logger.Logger
}

// Service exposes catalog reads plus the cache invalidation hooks used by
// admin writes.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) (ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (ProductDetail, error)
	Categories(ctx context.Context) ([]CategoryNode, error)
	PopularCategories(ctx context.Context) ([]PopularCategory, error)
	PopularProducts(ctx context.Context) ([]ProductSummary, error)
	LimitedProducts(ctx context.Context) ([]ProductSummary, error)
	ViewedProducts(ctx context.Context, userID uuid.UUID) ([]ViewedDTO, error)
	CreateAttribute(ctx context.Context, input AttributeInput) (*models.Attribute, error)
	InvalidateCategories(ctx context.Context) error
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  *Repository
	cache readCache
	logg  *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:  params.Repo,
		cache: params.Cache,
		logg:  params.Logger,
	}, nil
}

// ListProducts returns a filtered catalog page. Listing reads hit the DB
// directly; filters make them a poor cache fit.
func (s *service) ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) (ProductPage, error) {
	page, err := s.repo.ListProducts(ctx, filter, pagination.Normalize(params))
	if err != nil {
		return ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

// GetProduct returns the full product payload. Seller listings are served
// through the listings cache; an authenticated view updates browsing history.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (ProductDetail, error) {
	if id == uuid.Nil {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	listings, err := s.cachedListings(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}

	detail := ProductDetail{
		ID:           product.ID,
		CategoryID:   product.CategoryID,
		Title:        product.Title,
		Slug:         product.Slug,
		Description:  product.Description,
		ImageURL:     product.ImageURL,
		Tags:         []string(product.Tags),
		Listings:     listings,
		AveragePrice: AverageListingPrice(listings),
	}
	for _, attr := range product.Attributes {
		dto := AttributeDTO{Value: attr.Value}
		if attr.Attribute != nil {
			dto.Name = attr.Attribute.Name
			dto.Unit = attr.Attribute.Unit
			dto.Group = attr.Attribute.Group
		}
		detail.Attributes = append(detail.Attributes, dto)
	}
	if len(listings) > 0 {
		best := listings[0].ID
		detail.BestListingID = &best
	}

	if viewerID != nil && *viewerID != uuid.Nil {
		// history tracking must not fail the read
		if err := s.repo.RecordView(ctx, *viewerID, id); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "recording product view failed")
		}
	}

	return detail, nil
}

func (s *service) cachedListings(ctx context.Context, productID uuid.UUID) ([]ListingDTO, error) {
	key := cache.SellerListings(productID.String())

	var cached []ListingDTO
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listings cache read failed")
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.ListListings(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller listings")
	}

	listings := make([]ListingDTO, 0, len(rows))
	for _, row := range rows {
		dto := ListingDTO{
			ID:           row.ID,
			SellerID:     row.SellerID,
			Price:        row.Price,
			Quantity:     row.Quantity,
			FreeDelivery: row.FreeDelivery,
			IsLimited:    row.IsLimited,
		}
		if row.Seller != nil {
			dto.SellerName = row.Seller.Name
		}
		listings = append(listings, dto)
	}

	if err := s.cache.Set(ctx, key, listings); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listings cache write failed")
	}
	return listings, nil
}

// Categories returns the active category tree through the categories cache.
func (s *service) Categories(ctx context.Context) ([]CategoryNode, error) {
	key := cache.Categories()

	var cached []CategoryNode
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "categories cache read failed")
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}

	nodes := make([]CategoryNode, 0, len(rows))
	for _, row := range rows {
		node := CategoryNode{
			ID:      row.ID,
			Title:   row.Title,
			Slug:    row.Slug,
			IconURL: row.IconURL,
		}
		for _, child := range row.Children {
			node.Children = append(node.Children, CategoryNode{
				ID:      child.ID,
				Title:   child.Title,
				Slug:    child.Slug,
				IconURL: child.IconURL,
			})
		}
		nodes = append(nodes, node)
	}

	if err := s.cache.Set(ctx, key, nodes); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "categories cache write failed")
	}
	return nodes, nil
}

// PopularCategories returns the landing tiles.
func (s *service) PopularCategories(ctx context.Context) ([]PopularCategory, error) {
	rows, err := s.repo.PopularCategories(ctx, popularCategoriesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load popular categories")
	}
	return rows, nil
}

// PopularProducts returns the best sellers through the popularity cache.
func (s *service) PopularProducts(ctx context.Context) ([]ProductSummary, error) {
	key := cache.PopularProducts()

	var cached []ProductSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "popular products cache read failed")
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.PopularProducts(ctx, popularProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load popular products")
	}
	if err := s.cache.Set(ctx, key, rows); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "popular products cache write failed")
	}
	return rows, nil
}

// LimitedProducts returns limited-edition offers through its cache.
func (s *service) LimitedProducts(ctx context.Context) ([]ProductSummary, error) {
	key := cache.LimitedProducts()

	var cached []ProductSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "limited products cache read failed")
	}
	if hit {
		return cached, nil
	}

	rows, err := s.repo.LimitedProducts(ctx, limitedProductsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load limited products")
	}
	if err := s.cache.Set(ctx, key, rows); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "limited products cache write failed")
	}
	return rows, nil
}

// InvalidateCategories drops the category tree cache after a category write.
func (s *service) InvalidateCategories(ctx context.Context) error {
	return s.cache.Invalidate(ctx, cache.Categories())
}

// ViewedProducts returns the user's most recently opened product pages.
func (s *service) ViewedProducts(ctx context.Context, userID uuid.UUID) ([]ViewedDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view browsing history")
	}

	rows, err := s.repo.ListViewed(ctx, userID, viewedHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list viewed products")
	}

	out := make([]ViewedDTO, 0, len(rows))
	for _, row := range rows {
		dto := ViewedDTO{ProductID: row.ProductID, ViewedAt: row.ViewedAt}
		if row.Product != nil {
			dto.Title = row.Product.Title
			dto.Slug = row.Product.Slug
			dto.ImageURL = row.Product.ImageURL
		}
		out = append(out, dto)
	}
	return out, nil
}

// InvalidateProduct drops caches derived from one product's listings.
func (s *service) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return s.cache.Invalidate(ctx,
		cache.Product(id.String()),
		cache.SellerListings(id.String()),
		cache.PopularProducts(),
		cache.LimitedProducts(),
	)
}

// AverageListingPrice is the mean seller price rounded half-up to 2 decimal
// places, 0.00 when the product has no listings.
func AverageListingPrice(listings []ListingDTO) decimal.Decimal {
	if len(listings) == 0 {
		return decimal.Zero.Round(2)
	}
	sum := decimal.Zero
	for _, listing := range listings {
		sum = sum.Add(listing.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(listings)))).Round(2)
}
