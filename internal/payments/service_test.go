package payments

import (
	"context"
	"io"
	"testing"

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

type stubRepo struct {
	order    *models.Order
	attached string
	statuses []enums.OrderStatus
}

func (s *stubRepo) FindOrderForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubRepo) AttachStripeSession(_ context.Context, _ uuid.UUID, sessionID string) error {
	s.attached = sessionID
	return nil
}

func (s *stubRepo) SetStatus(_ context.Context, _ uuid.UUID, status enums.OrderStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

type stubStripe struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
}

func (s *stubStripe) CreateSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	if s.session == nil {
		s.session = &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://stripe.example/pay"}
	}
	return s.session, nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func checkoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		SuccessURL: "https://shop.example/payment/success",
		CancelURL:  "https://shop.example/payment/canceled",
		Currency:   "usd",
	}
}

func newTestService(t *testing.T, repo *stubRepo, client *stubStripe) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Stripe:   client,
		Checkout: checkoutConfig(),
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusPending,
		Items: []models.OrderItem{
			{Title: "phone", Price: dec("249.99"), Quantity: 2},
		},
		DeliveryCost: dec("200"),
		Subtotal:     dec("499.98"),
		Discount:     decimal.Zero,
		Total:        dec("699.98"),
	}
}

func TestCreateCheckoutSessionBuildsLineItems(t *testing.T) {
	repo := &stubRepo{order: pendingOrder()}
	client := &stubStripe{}
	svc := newTestService(t, repo, client)

	dto, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), repo.order.ID)
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if dto.URL != "https://stripe.example/pay" || dto.SessionID != "cs_test_123" {
		t.Fatalf("unexpected session dto %+v", dto)
	}
	if repo.attached != "cs_test_123" {
		t.Fatal("session id must be stored on the order")
	}

	// One product line plus the delivery line.
	if len(client.params.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(client.params.LineItems))
	}
	product := client.params.LineItems[0]
	if *product.PriceData.UnitAmount != 24999 || *product.Quantity != 2 {
		t.Fatalf("unit amounts must be minor units, got %d x%d", *product.PriceData.UnitAmount, *product.Quantity)
	}
	if *client.params.Mode != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("expected payment mode, got %s", *client.params.Mode)
	}
	if *client.params.SuccessURL != "https://shop.example/payment/success" {
		t.Fatalf("unexpected success url %s", *client.params.SuccessURL)
	}
}

func TestCreateCheckoutSessionPaidOrder(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusPaid
	svc := newTestService(t, &stubRepo{order: order}, &stubStripe{})

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), order.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateCheckoutSessionUnknownOrder(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubStripe{})

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProRateDiscountShrinksUnitAmounts(t *testing.T) {
	order := pendingOrder()
	order.Discount = dec("69.99")
	repo := &stubRepo{order: order}
	client := &stubStripe{}
	svc := newTestService(t, repo, client)

	if _, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), order.ID); err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	product := client.params.LineItems[0]
	if *product.PriceData.UnitAmount >= 24999 {
		t.Fatalf("discounted unit amount must shrink, got %d", *product.PriceData.UnitAmount)
	}
}

func TestConfirmPaymentMarksPaid(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusAwaiting
	order.StripeSessionID = "cs_test_123"
	repo := &stubRepo{order: order}
	svc := newTestService(t, repo, &stubStripe{})

	status, err := svc.ConfirmPayment(context.Background(), uuid.New(), order.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if status.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", status.Status)
	}
	if len(repo.statuses) != 1 || repo.statuses[0] != enums.OrderStatusPaid {
		t.Fatalf("expected one paid transition, got %v", repo.statuses)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusPaid
	order.StripeSessionID = "cs_test_123"
	repo := &stubRepo{order: order}
	svc := newTestService(t, repo, &stubStripe{})

	status, err := svc.ConfirmPayment(context.Background(), uuid.New(), order.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if status.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", status.Status)
	}
	if len(repo.statuses) != 0 {
		t.Fatal("confirming a paid order must not transition again")
	}
}

func TestConfirmPaymentWithoutSession(t *testing.T) {
	order := pendingOrder()
	svc := newTestService(t, &stubRepo{order: order}, &stubStripe{})

	_, err := svc.ConfirmPayment(context.Background(), uuid.New(), order.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCanceledRecordsNothing(t *testing.T) {
	order := pendingOrder()
	order.Status = enums.OrderStatusAwaiting
	repo := &stubRepo{order: order}
	svc := newTestService(t, repo, &stubStripe{})

	status, err := svc.Canceled(context.Background(), uuid.New(), order.ID)
	if err != nil {
		t.Fatalf("Canceled: %v", err)
	}
	if status.Status != enums.OrderStatusAwaiting {
		t.Fatalf("cancel must not change the status, got %s", status.Status)
	}
	if len(repo.statuses) != 0 {
		t.Fatal("cancel must not record a transition")
	}
}
