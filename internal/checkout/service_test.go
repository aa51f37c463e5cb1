package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/internal/cart"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/enums"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/session"
)

type stubRepo struct {
	created     *models.Order
	createdTx   *gorm.DB
	clearedUser uuid.UUID
	clearedTx   *gorm.DB
	clearErr    error
}

func (s *stubRepo) CreateOrder(_ context.Context, tx *gorm.DB, order *models.Order) error {
	order.ID = uuid.New()
	s.created = order
	s.createdTx = tx
	return nil
}

func (s *stubRepo) ClearUserCart(_ context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.clearedUser = userID
	s.clearedTx = tx
	return nil
}

func (s *stubRepo) FindOrderForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	if s.created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.created, nil
}

func (s *stubRepo) ListOrdersForUser(context.Context, uuid.UUID) ([]models.Order, error) {
	if s.created == nil {
		return nil, nil
	}
	return []models.Order{*s.created}, nil
}

type stubCart struct {
	dto cart.DTO
}

func (s *stubCart) Get(context.Context, uuid.UUID) (cart.DTO, error) {
	return s.dto, nil
}

// stubTx hands the callback a shared sentinel handle so tests can check
// both repo calls ran on the same transaction. A failing callback rolls
// back, so the stub discards whatever the repo recorded inside it.
type stubTx struct {
	handle *gorm.DB
	runs   int
	repo   *stubRepo
}

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.runs++
	if err := fn(s.handle); err != nil {
		if s.repo != nil {
			s.repo.created = nil
			s.repo.clearedUser = uuid.Nil
		}
		return err
	}
	return nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T, repo *stubRepo, cartSvc *stubCart) (Service, *stubTx) {
	t.Helper()
	runner := &stubTx{handle: &gorm.DB{}, repo: repo}
	svc, err := NewService(ServiceParams{Repo: repo, Cart: cartSvc, Tx: runner})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, runner
}

func filledCart() cart.DTO {
	return cart.DTO{
		Items: []cart.ItemDTO{{
			SellerProductID: uuid.New(),
			ProductID:       uuid.New(),
			SellerID:        uuid.New(),
			Title:           "phone",
			Quantity:        2,
			Price:           dec("250"),
			LineTotal:       dec("500"),
		}},
		TotalQuantity: 2,
		Subtotal:      dec("500"),
		Discount:      dec("50"),
		Total:         dec("450"),
	}
}

func completeState(t *testing.T, svc Service) *session.State {
	t.Helper()
	state := session.NewState()
	if _, err := svc.SetUserData(state, UserDataInput{FullName: "Jane Doe", Email: "jane@example.com", Phone: "555"}); err != nil {
		t.Fatalf("SetUserData: %v", err)
	}
	if _, err := svc.SetDelivery(state, DeliveryInput{Kind: "regular", City: "Springfield", Address: "1 Main St"}); err != nil {
		t.Fatalf("SetDelivery: %v", err)
	}
	if _, err := svc.SetPayment(state, PaymentInput{Kind: "card"}); err != nil {
		t.Fatalf("SetPayment: %v", err)
	}
	return state
}

func TestStepsAccumulateDraft(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, &stubCart{})
	state := completeState(t, svc)

	draft := state.OrderDraft
	if draft.FullName != "Jane Doe" || draft.DeliveryKind != "regular" || draft.PaymentKind != "card" {
		t.Fatalf("draft incomplete: %+v", draft)
	}
}

func TestSetDeliveryRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, &stubCart{})
	_, err := svc.SetDelivery(session.NewState(), DeliveryInput{Kind: "teleport", City: "x", Address: "y"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmRequiresAllSteps(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, &stubCart{dto: filledCart()})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Confirm(ctx, userID, session.NewState(), ConfirmInput{})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without user data, got %v", err)
	}

	state := session.NewState()
	if _, err := svc.SetUserData(state, UserDataInput{FullName: "Jane", Email: "j@e.com"}); err != nil {
		t.Fatalf("SetUserData: %v", err)
	}
	_, err = svc.Confirm(ctx, userID, state, ConfirmInput{})
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without delivery, got %v", err)
	}
}

func TestConfirmEmptyCart(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{}, &stubCart{dto: cart.DTO{}})
	state := completeState(t, svc)

	_, err := svc.Confirm(context.Background(), uuid.New(), state, ConfirmInput{})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for an empty cart, got %v", err)
	}
}

func TestConfirmCreatesOrderAndClears(t *testing.T) {
	repo := &stubRepo{}
	cartSvc := &stubCart{dto: filledCart()}
	svc, runner := newTestService(t, repo, cartSvc)
	state := completeState(t, svc)

	userID := uuid.New()
	dto, err := svc.Confirm(context.Background(), userID, state, ConfirmInput{Comment: "ring twice"})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if repo.created == nil {
		t.Fatal("order must be persisted")
	}
	if runner.runs != 1 {
		t.Fatalf("expected one transaction, got %d", runner.runs)
	}
	if repo.createdTx != runner.handle || repo.clearedTx != runner.handle {
		t.Fatal("order insert and cart wipe must share the transaction")
	}
	if repo.created.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", repo.created.Status)
	}
	if len(repo.created.Items) != 1 || repo.created.Items[0].Title != "phone" {
		t.Fatalf("order items must snapshot the cart, got %+v", repo.created.Items)
	}
	// 450 under the free-delivery threshold: regular delivery costs 200.
	if !dto.DeliveryCost.Equal(dec("200")) {
		t.Fatalf("expected delivery cost 200, got %s", dto.DeliveryCost)
	}
	if !dto.Total.Equal(dec("650")) {
		t.Fatalf("expected total 650, got %s", dto.Total)
	}
	if repo.clearedUser != userID {
		t.Fatal("cart must be cleared after confirmation")
	}
	if state.OrderDraft != nil {
		t.Fatal("order draft must be cleared after confirmation")
	}
}

func TestConfirmRollsBackOrderWhenCartWipeFails(t *testing.T) {
	repo := &stubRepo{clearErr: pkgerrors.New(pkgerrors.CodeDependency, "cart wipe failed")}
	svc, runner := newTestService(t, repo, &stubCart{dto: filledCart()})
	state := completeState(t, svc)

	_, err := svc.Confirm(context.Background(), uuid.New(), state, ConfirmInput{})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if runner.runs != 1 {
		t.Fatalf("expected one transaction, got %d", runner.runs)
	}
	if repo.created != nil {
		t.Fatal("a failed cart wipe must not leave the order behind")
	}
	if state.OrderDraft == nil {
		t.Fatal("draft must survive so the user can retry")
	}
}

func TestDeliveryCostRules(t *testing.T) {
	cases := []struct {
		kind  enums.DeliveryKind
		total string
		want  string
	}{
		{enums.DeliveryKindRegular, "450", "200"},
		{enums.DeliveryKindRegular, "2500", "0"},
		{enums.DeliveryKindExpress, "450", "700"},
		{enums.DeliveryKindExpress, "2500", "500"},
	}
	for _, tc := range cases {
		got := deliveryCostFor(tc.kind, dec(tc.total))
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("%s delivery on %s: expected %s, got %s", tc.kind, tc.total, tc.want, got)
		}
	}
}
