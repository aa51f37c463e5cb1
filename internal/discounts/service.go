package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
)

type repository interface {
	ActiveProductDiscounts(ctx context.Context, now time.Time) ([]models.ProductDiscount, error)
	ActiveBundleDiscounts(ctx context.Context, now time.Time) ([]models.BundleDiscount, error)
	ActiveCartDiscounts(ctx context.Context, now time.Time) ([]models.CartDiscount, error)
	ListProductDiscounts(ctx context.Context) ([]models.ProductDiscount, error)
	ListBundleDiscounts(ctx context.Context) ([]models.BundleDiscount, error)
	ListCartDiscounts(ctx context.Context) ([]models.CartDiscount, error)
	FindProductDiscount(ctx context.Context, id uuid.UUID) (*models.ProductDiscount, error)
	FindBundleDiscount(ctx context.Context, id uuid.UUID) (*models.BundleDiscount, error)
	FindCartDiscount(ctx context.Context, id uuid.UUID) (*models.CartDiscount, error)
	CreateProductDiscount(ctx context.Context, discount *models.ProductDiscount) error
	CreateBundleDiscount(ctx context.Context, discount *models.BundleDiscount) error
	CreateCartDiscount(ctx context.Context, discount *models.CartDiscount) error
	DeleteProductDiscount(ctx context.Context, id uuid.UUID) error
	DeleteBundleDiscount(ctx context.Context, id uuid.UUID) error
	DeleteCartDiscount(ctx context.Context, id uuid.UUID) error
	ProductCategories(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

// ServiceParams groups dependencies for the discount service.
type ServiceParams struct {
	Repo repository
	Now  func() time.Time
}

// Service resolves the best discount for a cart and hosts the admin CRUD
// with its configuration-time validation.
type Service interface {
	BestDiscount(ctx context.Context, cart CartSnapshot) (decimal.Decimal, error)
	List(ctx context.Context) (ListDTO, error)
	GetProductDiscount(ctx context.Context, id uuid.UUID) (*models.ProductDiscount, error)
	GetBundleDiscount(ctx context.Context, id uuid.UUID) (*models.BundleDiscount, error)
	GetCartDiscount(ctx context.Context, id uuid.UUID) (*models.CartDiscount, error)
	CreateProductDiscount(ctx context.Context, input ProductDiscountInput) (*models.ProductDiscount, error)
	CreateBundleDiscount(ctx context.Context, input BundleDiscountInput) (*models.BundleDiscount, error)
	CreateCartDiscount(ctx context.Context, input CartDiscountInput) (*models.CartDiscount, error)
	Delete(ctx context.Context, kind string, id uuid.UUID) error
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService builds a discount service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount repo is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: params.Repo, now: now}, nil
}

// BestDiscount returns the single winning candidate among product, cart and
// bundle discounts. Candidates are never summed; an empty cart gets zero.
func (s *service) BestDiscount(ctx context.Context, cart CartSnapshot) (decimal.Decimal, error) {
	if len(cart.Lines) == 0 {
		return decimal.Zero, nil
	}
	now := s.now()

	productRows, err := s.repo.ActiveProductDiscounts(ctx, now)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product discounts")
	}
	cartRows, err := s.repo.ActiveCartDiscounts(ctx, now)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart discounts")
	}
	bundleRows, err := s.repo.ActiveBundleDiscounts(ctx, now)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle discounts")
	}

	return bestOf(
		productCandidate(productRows, cart),
		cartCandidate(cartRows, cart),
		bundleCandidate(bundleRows, cart),
	), nil
}

// List returns every discount grouped by kind.
func (s *service) List(ctx context.Context) (ListDTO, error) {
	out := ListDTO{}

	productRows, err := s.repo.ListProductDiscounts(ctx)
	if err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product discounts")
	}
	for _, row := range productRows {
		out.Product = append(out.Product, SummaryDTO{
			Kind: KindProduct, ID: row.ID, Title: row.Title, Description: row.Description,
			Weight: row.Weight, ValidFrom: row.ValidFrom, ValidTo: row.ValidTo, IsActive: row.IsActive,
		})
	}

	bundleRows, err := s.repo.ListBundleDiscounts(ctx)
	if err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bundle discounts")
	}
	for _, row := range bundleRows {
		out.Bundle = append(out.Bundle, SummaryDTO{
			Kind: KindBundle, ID: row.ID, Title: row.Title, Description: row.Description,
			Weight: row.Weight, ValidFrom: row.ValidFrom, ValidTo: row.ValidTo, IsActive: row.IsActive,
		})
	}

	cartRows, err := s.repo.ListCartDiscounts(ctx)
	if err != nil {
		return ListDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart discounts")
	}
	for _, row := range cartRows {
		out.Cart = append(out.Cart, SummaryDTO{
			Kind: KindCart, ID: row.ID, Title: row.Title, Description: row.Description,
			Weight: row.Weight, ValidFrom: row.ValidFrom, ValidTo: row.ValidTo, IsActive: row.IsActive,
		})
	}

	return out, nil
}

func (s *service) GetProductDiscount(ctx context.Context, id uuid.UUID) (*models.ProductDiscount, error) {
	row, err := s.repo.FindProductDiscount(ctx, id)
	return row, notFoundOrDependency(err, "product discount")
}

func (s *service) GetBundleDiscount(ctx context.Context, id uuid.UUID) (*models.BundleDiscount, error) {
	row, err := s.repo.FindBundleDiscount(ctx, id)
	return row, notFoundOrDependency(err, "bundle discount")
}

func (s *service) GetCartDiscount(ctx context.Context, id uuid.UUID) (*models.CartDiscount, error) {
	row, err := s.repo.FindCartDiscount(ctx, id)
	return row, notFoundOrDependency(err, "cart discount")
}

func notFoundOrDependency(err error, label string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, label+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+label)
}

// CreateProductDiscount validates and persists a percentage discount.
func (s *service) CreateProductDiscount(ctx context.Context, input ProductDiscountInput) (*models.ProductDiscount, error) {
	if err := validateBase(input.BaseInput); err != nil {
		return nil, err
	}
	if input.Percent < 1 || input.Percent > 99 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 1 and 99").
			WithDetails(map[string]any{"field": "percent"})
	}
	if len(input.ProductIDs) == 0 && len(input.CategoryIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount needs at least one product or category").
			WithDetails(map[string]any{"field": "product_ids"})
	}

	discount := &models.ProductDiscount{
		Title:       input.Title,
		Description: input.Description,
		Percent:     input.Percent,
		Weight:      normalizeWeight(input.Weight),
		ValidFrom:   input.ValidFrom,
		ValidTo:     input.ValidTo,
		IsActive:    input.IsActive,
	}
	for _, id := range input.ProductIDs {
		pid := id
		discount.Targets = append(discount.Targets, models.ProductDiscountTarget{ProductID: &pid})
	}
	for _, id := range input.CategoryIDs {
		cid := id
		discount.Targets = append(discount.Targets, models.ProductDiscountTarget{CategoryID: &cid})
	}

	if err := s.repo.CreateProductDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product discount")
	}
	return discount, nil
}

// CreateBundleDiscount validates group disjointness and persists the bundle.
func (s *service) CreateBundleDiscount(ctx context.Context, input BundleDiscountInput) (*models.BundleDiscount, error) {
	if err := validateBase(input.BaseInput); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]any{"field": "amount"})
	}
	if err := s.validateBundleGroups(ctx, input.GroupOne, input.GroupTwo); err != nil {
		return nil, err
	}

	discount := &models.BundleDiscount{
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Weight:      normalizeWeight(input.Weight),
		ValidFrom:   input.ValidFrom,
		ValidTo:     input.ValidTo,
		IsActive:    input.IsActive,
	}
	discount.Entries = append(discount.Entries, groupEntries(1, input.GroupOne)...)
	discount.Entries = append(discount.Entries, groupEntries(2, input.GroupTwo)...)

	if err := s.repo.CreateBundleDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bundle discount")
	}
	return discount, nil
}

// CreateCartDiscount validates the ranges and persists the discount.
func (s *service) CreateCartDiscount(ctx context.Context, input CartDiscountInput) (*models.CartDiscount, error) {
	if err := validateBase(input.BaseInput); err != nil {
		return nil, err
	}
	if !input.DiscountPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount price must be positive").
			WithDetails(map[string]any{"field": "discount_price"})
	}
	if input.MinItems != nil && *input.MinItems < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum item count must be at least 1").
			WithDetails(map[string]any{"field": "min_items"})
	}
	if input.MinItems != nil && input.MaxItems != nil && *input.MinItems >= *input.MaxItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum item count must be below the maximum").
			WithDetails(map[string]any{"field": "min_items"})
	}
	if input.MinTotal != nil && !input.MinTotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum total must be positive").
			WithDetails(map[string]any{"field": "min_total"})
	}
	if input.MinTotal != nil && input.MaxTotal != nil && !input.MinTotal.LessThan(*input.MaxTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum total must be below the maximum").
			WithDetails(map[string]any{"field": "min_total"})
	}

	discount := &models.CartDiscount{
		Title:         input.Title,
		Description:   input.Description,
		DiscountPrice: input.DiscountPrice,
		Weight:        normalizeWeight(input.Weight),
		MinItems:      input.MinItems,
		MaxItems:      input.MaxItems,
		MinTotal:      input.MinTotal,
		MaxTotal:      input.MaxTotal,
		ValidFrom:     input.ValidFrom,
		ValidTo:       input.ValidTo,
		IsActive:      input.IsActive,
	}
	if err := s.repo.CreateCartDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart discount")
	}
	return discount, nil
}

// Delete removes a discount of the given kind.
func (s *service) Delete(ctx context.Context, kind string, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount id is required")
	}
	var err error
	switch kind {
	case KindProduct:
		err = s.repo.DeleteProductDiscount(ctx, id)
	case KindBundle:
		err = s.repo.DeleteBundleDiscount(ctx, id)
	case KindCart:
		err = s.repo.DeleteCartDiscount(ctx, id)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind").
			WithDetails(map[string]any{"kind": kind})
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount")
	}
	return nil
}

func validateBase(input BaseInput) error {
	if input.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required").
			WithDetails(map[string]any{"field": "title"})
	}
	if !input.ValidTo.After(input.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date").
			WithDetails(map[string]any{"field": "valid_to"})
	}
	if input.Weight != "" && !input.Weight.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount weight").
			WithDetails(map[string]any{"field": "weight"})
	}
	return nil
}

func normalizeWeight(weight enums.DiscountWeight) enums.DiscountWeight {
	if weight == "" {
		return enums.DiscountWeightLow
	}
	return weight
}

// validateBundleGroups rejects empty or overlapping bundle groups: shared
// products, shared categories, or a product of one group sitting inside a
// category of the other.
func (s *service) validateBundleGroups(ctx context.Context, one, two BundleGroupInput) error {
	if len(one.ProductIDs) == 0 && len(one.CategoryIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bundle group one is empty").
			WithDetails(map[string]any{"field": "group_one"})
	}
	if len(two.ProductIDs) == 0 && len(two.CategoryIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bundle group two is empty").
			WithDetails(map[string]any{"field": "group_two"})
	}

	if sharesID(one.ProductIDs, two.ProductIDs) {
		return pkgerrors.New(pkgerrors.CodeValidation, "bundle groups share a product").
			WithDetails(map[string]any{"field": "group_two"})
	}
	if sharesID(one.CategoryIDs, two.CategoryIDs) {
		return pkgerrors.New(pkgerrors.CodeValidation, "bundle groups share a category").
			WithDetails(map[string]any{"field": "group_two"})
	}

	allProducts := append(append([]uuid.UUID{}, one.ProductIDs...), two.ProductIDs...)
	categories, err := s.repo.ProductCategories(ctx, allProducts)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product categories")
	}
	if productInCategories(one.ProductIDs, two.CategoryIDs, categories) {
		return pkgerrors.New(pkgerrors.CodeValidation, "a product of group one belongs to a category of group two").
			WithDetails(map[string]any{"field": "group_one"})
	}
	if productInCategories(two.ProductIDs, one.CategoryIDs, categories) {
		return pkgerrors.New(pkgerrors.CodeValidation, "a product of group two belongs to a category of group one").
			WithDetails(map[string]any{"field": "group_two"})
	}
	return nil
}

func sharesID(a, b []uuid.UUID) bool {
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func productInCategories(products, categories []uuid.UUID, lookup map[uuid.UUID]uuid.UUID) bool {
	catSet := make(map[uuid.UUID]struct{}, len(categories))
	for _, id := range categories {
		catSet[id] = struct{}{}
	}
	for _, productID := range products {
		if categoryID, ok := lookup[productID]; ok {
			if _, hit := catSet[categoryID]; hit {
				return true
			}
		}
	}
	return false
}

func groupEntries(groupNo int16, group BundleGroupInput) []models.BundleDiscountEntry {
	entries := make([]models.BundleDiscountEntry, 0, len(group.ProductIDs)+len(group.CategoryIDs))
	for _, id := range group.ProductIDs {
		pid := id
		entries = append(entries, models.BundleDiscountEntry{GroupNo: groupNo, ProductID: &pid})
	}
	for _, id := range group.CategoryIDs {
		cid := id
		entries = append(entries, models.BundleDiscountEntry{GroupNo: groupNo, CategoryID: &cid})
	}
	return entries
}
