package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
)

type stubRepo struct {
	product []models.ProductDiscount
	bundle  []models.BundleDiscount
	cart    []models.CartDiscount

	createdProduct *models.ProductDiscount
	createdBundle  *models.BundleDiscount
	createdCart    *models.CartDiscount

	categories map[uuid.UUID]uuid.UUID
}

func (s *stubRepo) ActiveProductDiscounts(context.Context, time.Time) ([]models.ProductDiscount, error) {
	return s.product, nil
}

func (s *stubRepo) ActiveBundleDiscounts(context.Context, time.Time) ([]models.BundleDiscount, error) {
	return s.bundle, nil
}

func (s *stubRepo) ActiveCartDiscounts(context.Context, time.Time) ([]models.CartDiscount, error) {
	return s.cart, nil
}

func (s *stubRepo) ListProductDiscounts(context.Context) ([]models.ProductDiscount, error) {
	return s.product, nil
}

func (s *stubRepo) ListBundleDiscounts(context.Context) ([]models.BundleDiscount, error) {
	return s.bundle, nil
}

func (s *stubRepo) ListCartDiscounts(context.Context) ([]models.CartDiscount, error) {
	return s.cart, nil
}

func (s *stubRepo) FindProductDiscount(context.Context, uuid.UUID) (*models.ProductDiscount, error) {
	return nil, nil
}

func (s *stubRepo) FindBundleDiscount(context.Context, uuid.UUID) (*models.BundleDiscount, error) {
	return nil, nil
}

func (s *stubRepo) FindCartDiscount(context.Context, uuid.UUID) (*models.CartDiscount, error) {
	return nil, nil
}

func (s *stubRepo) CreateProductDiscount(_ context.Context, discount *models.ProductDiscount) error {
	s.createdProduct = discount
	return nil
}

func (s *stubRepo) CreateBundleDiscount(_ context.Context, discount *models.BundleDiscount) error {
	s.createdBundle = discount
	return nil
}

func (s *stubRepo) CreateCartDiscount(_ context.Context, discount *models.CartDiscount) error {
	s.createdCart = discount
	return nil
}

func (s *stubRepo) DeleteProductDiscount(context.Context, uuid.UUID) error { return nil }
func (s *stubRepo) DeleteBundleDiscount(context.Context, uuid.UUID) error  { return nil }
func (s *stubRepo) DeleteCartDiscount(context.Context, uuid.UUID) error    { return nil }

func (s *stubRepo) ProductCategories(context.Context, []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	if s.categories == nil {
		return map[uuid.UUID]uuid.UUID{}, nil
	}
	return s.categories, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validWindow() (time.Time, time.Time) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return from, from.Add(30 * 24 * time.Hour)
}

func baseInput() BaseInput {
	from, to := validWindow()
	return BaseInput{Title: "summer sale", ValidFrom: from, ValidTo: to, IsActive: true}
}

func wantValidation(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	details, ok := coded.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected field details, got %v", coded.Details())
	}
	if details["field"] != field {
		t.Fatalf("expected field %q, got %v", field, details["field"])
	}
}

func TestBestDiscountEmptyCart(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	got, err := svc.BestDiscount(context.Background(), CartSnapshot{})
	if err != nil {
		t.Fatalf("BestDiscount: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("empty cart must get zero, got %s", got)
	}
}

func TestBestDiscountPicksMaximumCandidate(t *testing.T) {
	productID := uuid.New()
	otherID := uuid.New()
	cart := CartSnapshot{Lines: []CartLine{
		{ProductID: productID, Quantity: 5, Price: dec("100")},
		{ProductID: otherID, Quantity: 1, Price: dec("100")},
	}}
	pidOne, pidTwo := productID, otherID

	repo := &stubRepo{
		// 10% of 500 = 50 on the targeted line.
		product: []models.ProductDiscount{
			{Percent: 10, Targets: []models.ProductDiscountTarget{productTarget(productID)}},
		},
		// 600 repriced to 520 = 80.
		cart: []models.CartDiscount{{DiscountPrice: dec("520")}},
		// Both groups present = 30.
		bundle: []models.BundleDiscount{{
			Amount: dec("30"),
			Entries: []models.BundleDiscountEntry{
				{GroupNo: 1, ProductID: &pidOne},
				{GroupNo: 2, ProductID: &pidTwo},
			},
		}},
	}
	svc := newTestService(t, repo)

	got, err := svc.BestDiscount(context.Background(), cart)
	if err != nil {
		t.Fatalf("BestDiscount: %v", err)
	}
	if !got.Equal(dec("80")) {
		t.Fatalf("expected the cart candidate 80 to win, got %s", got)
	}
}

func TestCreateProductDiscountValidation(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	ctx := context.Background()

	input := ProductDiscountInput{BaseInput: baseInput(), Percent: 0, ProductIDs: []uuid.UUID{uuid.New()}}
	_, err := svc.CreateProductDiscount(ctx, input)
	wantValidation(t, err, "percent")

	input.Percent = 100
	_, err = svc.CreateProductDiscount(ctx, input)
	wantValidation(t, err, "percent")

	input.Percent = 10
	input.ProductIDs = nil
	_, err = svc.CreateProductDiscount(ctx, input)
	wantValidation(t, err, "product_ids")
}

func TestCreateProductDiscountInvalidWindowNeverPersists(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	input := ProductDiscountInput{BaseInput: baseInput(), Percent: 10, ProductIDs: []uuid.UUID{uuid.New()}}
	input.ValidTo = input.ValidFrom
	_, err := svc.CreateProductDiscount(context.Background(), input)
	wantValidation(t, err, "valid_to")
	if repo.createdProduct != nil {
		t.Fatal("discount with an invalid window must not persist")
	}
}

func TestCreateProductDiscountBuildsTargets(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	productID := uuid.New()
	categoryID := uuid.New()
	input := ProductDiscountInput{
		BaseInput:   baseInput(),
		Percent:     15,
		ProductIDs:  []uuid.UUID{productID},
		CategoryIDs: []uuid.UUID{categoryID},
	}
	created, err := svc.CreateProductDiscount(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateProductDiscount: %v", err)
	}
	if len(created.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(created.Targets))
	}
	if created.Targets[0].ProductID == nil || *created.Targets[0].ProductID != productID {
		t.Fatal("expected a product target")
	}
	if created.Targets[1].CategoryID == nil || *created.Targets[1].CategoryID != categoryID {
		t.Fatal("expected a category target")
	}
}

func TestCreateBundleDiscountRejectsOverlap(t *testing.T) {
	shared := uuid.New()
	svc := newTestService(t, &stubRepo{})
	ctx := context.Background()

	input := BundleDiscountInput{
		BaseInput: baseInput(),
		Amount:    dec("20"),
		GroupOne:  BundleGroupInput{ProductIDs: []uuid.UUID{shared}},
		GroupTwo:  BundleGroupInput{ProductIDs: []uuid.UUID{shared}},
	}
	_, err := svc.CreateBundleDiscount(ctx, input)
	wantValidation(t, err, "group_two")

	category := uuid.New()
	input.GroupOne = BundleGroupInput{CategoryIDs: []uuid.UUID{category}}
	input.GroupTwo = BundleGroupInput{CategoryIDs: []uuid.UUID{category}}
	_, err = svc.CreateBundleDiscount(ctx, input)
	wantValidation(t, err, "group_two")
}

func TestCreateBundleDiscountRejectsProductInsideOtherGroupCategory(t *testing.T) {
	productID := uuid.New()
	categoryID := uuid.New()
	repo := &stubRepo{categories: map[uuid.UUID]uuid.UUID{productID: categoryID}}
	svc := newTestService(t, repo)

	input := BundleDiscountInput{
		BaseInput: baseInput(),
		Amount:    dec("20"),
		GroupOne:  BundleGroupInput{ProductIDs: []uuid.UUID{productID}},
		GroupTwo:  BundleGroupInput{CategoryIDs: []uuid.UUID{categoryID}},
	}
	_, err := svc.CreateBundleDiscount(context.Background(), input)
	wantValidation(t, err, "group_one")
	if repo.createdBundle != nil {
		t.Fatal("overlapping bundle must not persist")
	}
}

func TestCreateBundleDiscountRejectsEmptyGroup(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	input := BundleDiscountInput{
		BaseInput: baseInput(),
		Amount:    dec("20"),
		GroupTwo:  BundleGroupInput{ProductIDs: []uuid.UUID{uuid.New()}},
	}
	_, err := svc.CreateBundleDiscount(context.Background(), input)
	wantValidation(t, err, "group_one")
}

func TestCreateBundleDiscountBuildsEntries(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	input := BundleDiscountInput{
		BaseInput: baseInput(),
		Amount:    dec("25"),
		GroupOne:  BundleGroupInput{ProductIDs: []uuid.UUID{uuid.New()}},
		GroupTwo:  BundleGroupInput{CategoryIDs: []uuid.UUID{uuid.New()}},
	}
	created, err := svc.CreateBundleDiscount(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateBundleDiscount: %v", err)
	}
	if len(created.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(created.Entries))
	}
	if created.Entries[0].GroupNo != 1 || created.Entries[1].GroupNo != 2 {
		t.Fatal("entries must carry their group numbers")
	}
}

func TestCreateCartDiscountRangeValidation(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	ctx := context.Background()

	input := CartDiscountInput{BaseInput: baseInput(), DiscountPrice: dec("50"), MinItems: intPtr(0)}
	_, err := svc.CreateCartDiscount(ctx, input)
	wantValidation(t, err, "min_items")

	input = CartDiscountInput{BaseInput: baseInput(), DiscountPrice: dec("50"), MinItems: intPtr(5), MaxItems: intPtr(5)}
	_, err = svc.CreateCartDiscount(ctx, input)
	wantValidation(t, err, "min_items")

	input = CartDiscountInput{BaseInput: baseInput(), DiscountPrice: dec("50"), MinTotal: decPtr("0")}
	_, err = svc.CreateCartDiscount(ctx, input)
	wantValidation(t, err, "min_total")

	input = CartDiscountInput{BaseInput: baseInput(), DiscountPrice: dec("50"), MinTotal: decPtr("100"), MaxTotal: decPtr("100")}
	_, err = svc.CreateCartDiscount(ctx, input)
	wantValidation(t, err, "min_total")
}

func TestCreateCartDiscountPersists(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	input := CartDiscountInput{
		BaseInput:     baseInput(),
		DiscountPrice: dec("450"),
		MinItems:      intPtr(1),
		MaxItems:      intPtr(10),
		MinTotal:      decPtr("100"),
		MaxTotal:      decPtr("1000"),
	}
	created, err := svc.CreateCartDiscount(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateCartDiscount: %v", err)
	}
	if repo.createdCart != created {
		t.Fatal("expected the discount to be persisted")
	}
	if !created.DiscountPrice.Equal(dec("450")) {
		t.Fatalf("expected discount price 450, got %s", created.DiscountPrice)
	}
}

func TestDeleteUnknownKind(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	err := svc.Delete(context.Background(), "mystery", uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
