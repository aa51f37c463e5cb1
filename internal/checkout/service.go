package checkout

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/internal/cart"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/session"
)

// Delivery pricing. Regular delivery is free above the threshold; express
// always adds its surcharge on top of the regular cost.
var (
	freeDeliveryThreshold = decimal.NewFromInt(2000)
	regularDeliveryCost   = decimal.NewFromInt(200)
	expressSurcharge      = decimal.NewFromInt(500)
)

type repository interface {
	CreateOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error
	ClearUserCart(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type cartService interface {
	Get(ctx context.Context, userID uuid.UUID) (cart.DTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Repo repository
	Cart cartService
	Tx   txRunner
}

// Service drives the four-step checkout. Steps one to three accumulate data
// in the session draft; confirmation turns the cart into an order.
type Service interface {
	SetUserData(state *session.State, input UserDataInput) (DraftDTO, error)
	SetDelivery(state *session.State, input DeliveryInput) (DraftDTO, error)
	SetPayment(state *session.State, input PaymentInput) (DraftDTO, error)
	Confirm(ctx context.Context, userID uuid.UUID, state *session.State, input ConfirmInput) (OrderDTO, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
}

type service struct {
	repo    repository
	cartSvc cartService
	tx      txRunner
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{repo: params.Repo, cartSvc: params.Cart, tx: params.Tx}, nil
}

// SetUserData stores step one in the session draft.
func (s *service) SetUserData(state *session.State, input UserDataInput) (DraftDTO, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)
	if fullName == "" {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "full name is required").
			WithDetails(map[string]any{"field": "full_name"})
	}
	if email == "" {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required").
			WithDetails(map[string]any{"field": "email"})
	}

	draft := ensureDraft(state)
	draft.FullName = fullName
	draft.Email = email
	draft.Phone = strings.TrimSpace(input.Phone)
	return toDraftDTO(draft), nil
}

// SetDelivery stores step two in the session draft.
func (s *service) SetDelivery(state *session.State, input DeliveryInput) (DraftDTO, error) {
	kind, err := enums.ParseDeliveryKind(input.Kind)
	if err != nil {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery kind").
			WithDetails(map[string]any{"field": "kind"})
	}
	city := strings.TrimSpace(input.City)
	address := strings.TrimSpace(input.Address)
	if city == "" {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "city is required").
			WithDetails(map[string]any{"field": "city"})
	}
	if address == "" {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "address is required").
			WithDetails(map[string]any{"field": "address"})
	}

	draft := ensureDraft(state)
	draft.DeliveryKind = string(kind)
	draft.City = city
	draft.Address = address
	return toDraftDTO(draft), nil
}

// SetPayment stores step three in the session draft.
func (s *service) SetPayment(state *session.State, input PaymentInput) (DraftDTO, error) {
	kind, err := enums.ParsePaymentKind(input.Kind)
	if err != nil {
		return DraftDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment kind").
			WithDetails(map[string]any{"field": "kind"})
	}
	draft := ensureDraft(state)
	draft.PaymentKind = string(kind)
	return toDraftDTO(draft), nil
}

// Confirm turns the cart into an order. The draft must be complete and the
// cart non-empty; success clears both.
func (s *service) Confirm(ctx context.Context, userID uuid.UUID, state *session.State, input ConfirmInput) (OrderDTO, error) {
	draft := state.OrderDraft
	if draft == nil || draft.FullName == "" || draft.Email == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout user data is missing")
	}
	if draft.DeliveryKind == "" || draft.City == "" || draft.Address == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout delivery step is missing")
	}
	if draft.PaymentKind == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout payment step is missing")
	}

	cartDTO, err := s.cartSvc.Get(ctx, userID)
	if err != nil {
		return OrderDTO{}, err
	}
	if len(cartDTO.Items) == 0 {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	deliveryKind := enums.DeliveryKind(draft.DeliveryKind)
	deliveryCost := deliveryCostFor(deliveryKind, cartDTO.Total)

	order := &models.Order{
		UserID:       userID,
		FullName:     draft.FullName,
		Email:        draft.Email,
		Phone:        draft.Phone,
		DeliveryKind: deliveryKind,
		City:         draft.City,
		Address:      draft.Address,
		PaymentKind:  enums.PaymentKind(draft.PaymentKind),
		Status:       enums.OrderStatusPending,
		Comment:      strings.TrimSpace(input.Comment),
		DeliveryCost: deliveryCost,
		Subtotal:     cartDTO.Subtotal,
		Discount:     cartDTO.Discount,
		Total:        cartDTO.Total.Add(deliveryCost),
	}
	for _, item := range cartDTO.Items {
		orderItem := models.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
		if item.SellerID != uuid.Nil {
			sellerID := item.SellerID
			orderItem.SellerID = &sellerID
		}
		order.Items = append(order.Items, orderItem)
	}

	// the order insert and the cart wipe commit or roll back together
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		return s.repo.ClearUserCart(ctx, tx, userID)
	})
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	state.OrderDraft = nil

	return toOrderDTO(*order), nil
}

// GetOrder loads one of the user's orders.
func (s *service) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (OrderDTO, error) {
	order, err := s.repo.FindOrderForUser(ctx, orderID, userID)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	return toOrderDTO(*order), nil
}

// ListOrders returns the user's order history, newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.repo.ListOrdersForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderDTO(order))
	}
	return out, nil
}

func deliveryCostFor(kind enums.DeliveryKind, cartTotal decimal.Decimal) decimal.Decimal {
	cost := decimal.Zero
	if cartTotal.LessThan(freeDeliveryThreshold) {
		cost = regularDeliveryCost
	}
	if kind == enums.DeliveryKindExpress {
		cost = cost.Add(expressSurcharge)
	}
	return cost
}

func ensureDraft(state *session.State) *session.OrderDraft {
	if state.OrderDraft == nil {
		state.OrderDraft = &session.OrderDraft{}
	}
	return state.OrderDraft
}

func toDraftDTO(draft *session.OrderDraft) DraftDTO {
	return DraftDTO{
		FullName:     draft.FullName,
		Email:        draft.Email,
		Phone:        draft.Phone,
		DeliveryKind: draft.DeliveryKind,
		City:         draft.City,
		Address:      draft.Address,
		PaymentKind:  draft.PaymentKind,
	}
}

func toOrderDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:           order.ID,
		Status:       order.Status,
		DeliveryKind: order.DeliveryKind,
		PaymentKind:  order.PaymentKind,
		DeliveryCost: order.DeliveryCost,
		Subtotal:     order.Subtotal,
		Discount:     order.Discount,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return dto
}
