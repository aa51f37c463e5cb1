package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

var minorUnitFactor = decimal.NewFromInt(100)

type repository interface {
	FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	AttachStripeSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo     repository
	Stripe   StripeCheckoutClient
	Checkout config.CheckoutConfig
	Logger   *logger.Logger
}

// StatusDTO reports an order's payment state.
type StatusDTO struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

// CheckoutSessionDTO carries the hosted payment page URL.
type CheckoutSessionDTO struct {
	OrderID   uuid.UUID `json:"order_id"`
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
}

// Service is the payment boundary: it hands carts over to Stripe's hosted
// checkout and applies the redirect outcomes.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID, orderID uuid.UUID) (CheckoutSessionDTO, error)
	ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID) (StatusDTO, error)
	Canceled(ctx context.Context, userID, orderID uuid.UUID) (StatusDTO, error)
}

type service struct {
	repo     repository
	stripe   StripeCheckoutClient
	checkout config.CheckoutConfig
	logg     *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment repo is required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe client is required")
	}
	if params.Checkout.SuccessURL == "" || params.Checkout.CancelURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout redirect urls are required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		stripe:   params.Stripe,
		checkout: params.Checkout,
		logg:     params.Logger,
	}, nil
}

// CreateCheckoutSession builds the hosted Stripe session for a pending order
// and moves it to awaiting payment.
func (s *service) CreateCheckoutSession(ctx context.Context, userID, orderID uuid.UUID) (CheckoutSessionDTO, error) {
	order, err := s.loadOrder(ctx, userID, orderID)
	if err != nil {
		return CheckoutSessionDTO{}, err
	}
	if order.Status == enums.OrderStatusPaid {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if len(order.Items) == 0 {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
	}

	currency := s.checkout.Currency
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.checkout.SuccessURL),
		CancelURL:         stripe.String(s.checkout.CancelURL),
		ClientReferenceID: stripe.String(order.ID.String()),
	}
	for _, item := range order.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(minorUnits(item.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Title),
				},
			},
		})
	}
	if order.DeliveryCost.IsPositive() {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(minorUnits(order.DeliveryCost)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Delivery"),
				},
			},
		})
	}
	if order.Discount.IsPositive() {
		// Stripe has no negative line items; spread the discount across the
		// unit amounts instead.
		params.LineItems = proRateDiscount(params.LineItems, order.Discount)
	}

	created, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe session")
	}
	if err := s.repo.AttachStripeSession(ctx, order.ID, created.ID); err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store stripe session")
	}

	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "stripe checkout session created")
	return CheckoutSessionDTO{OrderID: order.ID, SessionID: created.ID, URL: created.URL}, nil
}

// ConfirmPayment applies the success redirect: the order becomes paid.
// Confirming an already paid order is a no-op.
func (s *service) ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID) (StatusDTO, error) {
	order, err := s.loadOrder(ctx, userID, orderID)
	if err != nil {
		return StatusDTO{}, err
	}
	if order.Status == enums.OrderStatusPaid {
		return StatusDTO{OrderID: order.ID, Status: order.Status}, nil
	}
	if order.StripeSessionID == "" {
		return StatusDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment session")
	}
	if err := s.repo.SetStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
		return StatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "order paid")
	return StatusDTO{OrderID: order.ID, Status: enums.OrderStatusPaid}, nil
}

// Canceled reports the cancel redirect. Nothing is recorded; the order stays
// payable.
func (s *service) Canceled(ctx context.Context, userID, orderID uuid.UUID) (StatusDTO, error) {
	order, err := s.loadOrder(ctx, userID, orderID)
	if err != nil {
		return StatusDTO{}, err
	}
	return StatusDTO{OrderID: order.ID, Status: order.Status}, nil
}

func (s *service) loadOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindOrderForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitFactor).Round(0).IntPart()
}

// proRateDiscount spreads the order discount across the line items by
// shrinking each unit amount by the discount's share of the subtotal.
func proRateDiscount(items []*stripe.CheckoutSessionLineItemParams, discount decimal.Decimal) []*stripe.CheckoutSessionLineItemParams {
	var subtotal int64
	for _, item := range items {
		subtotal += *item.PriceData.UnitAmount * *item.Quantity
	}
	if subtotal == 0 {
		return items
	}
	discountMinor := minorUnits(discount)
	ratio := decimal.NewFromInt(subtotal - discountMinor).Div(decimal.NewFromInt(subtotal))
	for _, item := range items {
		reduced := decimal.NewFromInt(*item.PriceData.UnitAmount).Mul(ratio).Round(0).IntPart()
		item.PriceData.UnitAmount = stripe.Int64(reduced)
	}
	return items
}
