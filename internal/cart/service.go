package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/internal/discounts"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/session"
)

type repository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindCartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, sellerProductID uuid.UUID, quantity int, price decimal.Decimal) error
	SetItemQuantity(ctx context.Context, cartID, sellerProductID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, sellerProductID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	FindListing(ctx context.Context, sellerProductID uuid.UUID) (*models.SellerProduct, error)
}

type discounter interface {
	BestDiscount(ctx context.Context, cart discounts.CartSnapshot) (decimal.Decimal, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo      repository
	Discounts discounter
	Logger    *logger.Logger
}

// Service manages the persisted cart of authenticated users and the
// session cart of anonymous visitors.
type Service interface {
	AddProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error
	UpdateProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, sellerProductID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (DTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error

	AddSessionProduct(ctx context.Context, state *session.State, sellerProductID uuid.UUID, quantity int) error
	UpdateSessionProduct(state *session.State, sellerProductID uuid.UUID, quantity int) error
	RemoveSessionItem(state *session.State, sellerProductID uuid.UUID)
	GetSession(ctx context.Context, state *session.State) (DTO, error)

	MergeSessionCart(ctx context.Context, userID uuid.UUID, state *session.State) error
}

type service struct {
	repo      repository
	discounts discounter
	logg      *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Discounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:      params.Repo,
		discounts: params.Discounts,
		logg:      params.Logger,
	}, nil
}

// AddProduct adds a listing to the user's cart. A new line snapshots the
// listing's current price; an existing line just grows.
func (s *service) AddProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	listing, err := s.findListing(ctx, sellerProductID)
	if err != nil {
		return err
	}
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.UpsertItem(ctx, cart.ID, sellerProductID, quantity, listing.Price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return nil
}

// UpdateProduct sets a line's quantity; zero or less removes the line.
func (s *service) UpdateProduct(ctx context.Context, userID, sellerProductID uuid.UUID, quantity int) error {
	cart, err := s.repo.FindCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart is empty")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if quantity < 1 {
		if err := s.repo.DeleteItem(ctx, cart.ID, sellerProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return nil
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, sellerProductID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return nil
}

// RemoveItem deletes a line from the user's cart.
func (s *service) RemoveItem(ctx context.Context, userID, sellerProductID uuid.UUID) error {
	cart, err := s.repo.FindCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, sellerProductID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

// Clear removes every line of the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.FindCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.ClearCart(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Get returns the persisted cart with totals and the best discount applied.
// Users without a cart get an empty one with zero totals.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (DTO, error) {
	cart, err := s.repo.FindCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyDTO(), nil
		}
		return DTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	dto := emptyDTO()
	var lines []discounts.CartLine
	for _, item := range cart.Items {
		entry := ItemDTO{
			SellerProductID: item.SellerProductID,
			Quantity:        item.Quantity,
			Price:           item.Price,
			LineTotal:       item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		line := discounts.CartLine{Quantity: item.Quantity, Price: item.Price}
		if item.SellerProduct != nil {
			entry.ProductID = item.SellerProduct.ProductID
			entry.SellerID = item.SellerProduct.SellerID
			line.ProductID = item.SellerProduct.ProductID
			if item.SellerProduct.Product != nil {
				entry.Title = item.SellerProduct.Product.Title
				entry.ImageURL = item.SellerProduct.Product.ImageURL
				line.CategoryID = item.SellerProduct.Product.CategoryID
			}
			if item.SellerProduct.Seller != nil {
				entry.SellerName = item.SellerProduct.Seller.Name
			}
		}
		dto.Items = append(dto.Items, entry)
		dto.TotalQuantity += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(entry.LineTotal)
		lines = append(lines, line)
	}

	return s.applyDiscount(ctx, dto, lines), nil
}

// AddSessionProduct adds a listing to the anonymous cart, snapshotting its
// current price for new lines.
func (s *service) AddSessionProduct(ctx context.Context, state *session.State, sellerProductID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	listing, err := s.findListing(ctx, sellerProductID)
	if err != nil {
		return err
	}
	state.AddCartLine(sellerProductID.String(), quantity, listing.Price.String())
	return nil
}

// UpdateSessionProduct sets a session line's quantity; zero or less removes it.
func (s *service) UpdateSessionProduct(state *session.State, sellerProductID uuid.UUID, quantity int) error {
	key := sellerProductID.String()
	if _, ok := state.Cart[key]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	state.SetCartLine(key, quantity, "")
	return nil
}

func (s *service) RemoveSessionItem(state *session.State, sellerProductID uuid.UUID) {
	state.SetCartLine(sellerProductID.String(), 0, "")
}

// GetSession renders the anonymous cart. Display data comes from the live
// listings; prices stay the session snapshots.
func (s *service) GetSession(ctx context.Context, state *session.State) (DTO, error) {
	dto := emptyDTO()
	var lines []discounts.CartLine
	for key, sessionLine := range state.Cart {
		sellerProductID, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(sessionLine.Price)
		if err != nil {
			continue
		}
		entry := ItemDTO{
			SellerProductID: sellerProductID,
			Quantity:        sessionLine.Quantity,
			Price:           price,
			LineTotal:       price.Mul(decimal.NewFromInt(int64(sessionLine.Quantity))),
		}
		line := discounts.CartLine{Quantity: sessionLine.Quantity, Price: price}
		listing, err := s.repo.FindListing(ctx, sellerProductID)
		if err == nil {
			entry.ProductID = listing.ProductID
			entry.SellerID = listing.SellerID
			line.ProductID = listing.ProductID
			if listing.Product != nil {
				entry.Title = listing.Product.Title
				entry.ImageURL = listing.Product.ImageURL
				line.CategoryID = listing.Product.CategoryID
			}
			if listing.Seller != nil {
				entry.SellerName = listing.Seller.Name
			}
		}
		dto.Items = append(dto.Items, entry)
		dto.TotalQuantity += sessionLine.Quantity
		dto.Subtotal = dto.Subtotal.Add(entry.LineTotal)
		lines = append(lines, line)
	}

	return s.applyDiscount(ctx, dto, lines), nil
}

// MergeSessionCart folds the anonymous cart into the user's persisted one on
// login, then clears the session cart.
func (s *service) MergeSessionCart(ctx context.Context, userID uuid.UUID, state *session.State) error {
	for key, sessionLine := range state.Cart {
		sellerProductID, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		if err := s.AddProduct(ctx, userID, sellerProductID, sessionLine.Quantity); err != nil {
			coded := pkgerrors.As(err)
			if coded != nil && coded.Code() == pkgerrors.CodeNotFound {
				// Listing vanished while the visitor was anonymous.
				s.logg.Warn(s.logg.WithField(ctx, "seller_product_id", key), "skipping stale session cart line")
				continue
			}
			return err
		}
	}
	state.ClearCart()
	return nil
}

func (s *service) findListing(ctx context.Context, sellerProductID uuid.UUID) (*models.SellerProduct, error) {
	if sellerProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller product id is required")
	}
	listing, err := s.repo.FindListing(ctx, sellerProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

// applyDiscount fills Discount and Total. Resolver failures degrade to an
// undiscounted cart rather than failing the read.
func (s *service) applyDiscount(ctx context.Context, dto DTO, lines []discounts.CartLine) DTO {
	dto.Total = dto.Subtotal
	if len(lines) == 0 {
		return dto
	}
	saving, err := s.discounts.BestDiscount(ctx, discounts.CartSnapshot{Lines: lines})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discount resolution failed")
		return dto
	}
	dto.Discount = saving
	dto.Total = dto.Subtotal.Sub(saving)
	if dto.Total.IsNegative() {
		dto.Total = decimal.Zero
	}
	return dto
}

func emptyDTO() DTO {
	return DTO{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}
