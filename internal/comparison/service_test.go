package comparison

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/session"
)

type stubRepo struct {
	products []models.Product
}

func (s *stubRepo) FindProducts(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []models.Product
	for _, product := range s.products {
		if _, ok := want[product.ID]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func attrRef(name, unit, group string) *models.Attribute {
	return &models.Attribute{Name: name, Unit: unit, Group: group}
}

func testProduct(title string, attrs []models.ProductAttribute, prices ...string) models.Product {
	product := models.Product{
		ID:         uuid.New(),
		Title:      title,
		Attributes: attrs,
	}
	for _, price := range prices {
		product.Listings = append(product.Listings, models.SellerProduct{Price: dec(price)})
	}
	return product
}

func stateWith(products ...models.Product) *session.State {
	state := session.NewState()
	for _, product := range products {
		state.AddComparison(product.ID.String())
	}
	return state
}

func TestBuildNotEnoughProducts(t *testing.T) {
	product := testProduct("phone", nil)
	svc := newTestService(t, &stubRepo{products: []models.Product{product}})

	table, err := svc.Build(context.Background(), stateWith(product))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if table.Enough {
		t.Fatal("one product is not enough to compare")
	}
	if table.Count != 1 {
		t.Fatalf("expected count 1, got %d", table.Count)
	}
}

func TestBuildDropsDeletedProducts(t *testing.T) {
	existing := testProduct("phone", nil)
	svc := newTestService(t, &stubRepo{products: []models.Product{existing}})

	state := stateWith(existing)
	state.AddComparison(uuid.New().String())

	table, err := svc.Build(context.Background(), state)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if table.Enough || table.Count != 1 {
		t.Fatalf("deleted product must not count, got count %d enough %v", table.Count, table.Enough)
	}
}

func TestBuildTable(t *testing.T) {
	screen := attrRef("Screen", "inch", "Display")
	battery := attrRef("Battery", "mAh", "Power")
	color := attrRef("Color", "", "Design")

	first := testProduct("phone a", []models.ProductAttribute{
		{Attribute: screen, Value: "6.1"},
		{Attribute: battery, Value: "4000"},
		{Attribute: color, Value: "black"},
	}, "100", "200")
	second := testProduct("phone b", []models.ProductAttribute{
		{Attribute: screen, Value: "6.7"},
		{Attribute: battery, Value: "4000"},
		{Attribute: color, Value: "black"},
	}, "150")

	svc := newTestService(t, &stubRepo{products: []models.Product{second, first}})
	table, err := svc.Build(context.Background(), stateWith(first, second))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !table.Enough || table.Count != 2 {
		t.Fatalf("expected a full table, got count %d enough %v", table.Count, table.Enough)
	}

	// Columns follow selection order, not query order.
	if table.Products[0].Title != "phone a" || table.Products[1].Title != "phone b" {
		t.Fatalf("columns out of order: %q, %q", table.Products[0].Title, table.Products[1].Title)
	}
	if !table.Products[0].AveragePrice.Equal(dec("150")) {
		t.Fatalf("expected average price 150, got %s", table.Products[0].AveragePrice)
	}

	if len(table.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(table.Groups))
	}

	display := table.Groups[0]
	if display.Name != "Display" || display.Hidden {
		t.Fatalf("display group must be visible, got %+v", display)
	}
	if display.Rows[0].Values[0] != "6.1 inch" || display.Rows[0].Values[1] != "6.7 inch" {
		t.Fatalf("expected unit-suffixed values, got %v", display.Rows[0].Values)
	}
	if display.Rows[0].Same {
		t.Fatal("differing values must not be marked same")
	}

	power := table.Groups[1]
	if !power.Hidden {
		t.Fatal("group with only identical rows must be hidden")
	}
	if !power.Rows[0].Same {
		t.Fatal("identical battery values must be marked same")
	}

	design := table.Groups[2]
	if design.Rows[0].Values[0] != "black" {
		t.Fatalf("unitless values must have no suffix, got %q", design.Rows[0].Values[0])
	}
}

func TestBuildDropsPartialAttributes(t *testing.T) {
	shared := attrRef("Weight", "g", "")
	onlyFirst := attrRef("Waterproof", "", "")

	first := testProduct("a", []models.ProductAttribute{
		{Attribute: shared, Value: "180"},
		{Attribute: onlyFirst, Value: "yes"},
	})
	second := testProduct("b", []models.ProductAttribute{
		{Attribute: shared, Value: "190"},
	})

	svc := newTestService(t, &stubRepo{products: []models.Product{first, second}})
	table, err := svc.Build(context.Background(), stateWith(first, second))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(table.Groups) != 1 {
		t.Fatalf("expected one group, got %d", len(table.Groups))
	}
	rows := table.Groups[0].Rows
	if len(rows) != 1 || rows[0].Name != "Weight" {
		t.Fatalf("attribute missing on a product must vanish, got %+v", rows)
	}
	if table.Groups[0].Name != "General" {
		t.Fatalf("ungrouped attributes land in General, got %q", table.Groups[0].Name)
	}
}

func TestAddRemoveCount(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	state := session.NewState()
	id := uuid.New()

	if !svc.Add(state, id) {
		t.Fatal("first add must report a change")
	}
	if svc.Add(state, id) {
		t.Fatal("repeated add must be a no-op")
	}
	if svc.Count(state) != 1 {
		t.Fatalf("expected count 1, got %d", svc.Count(state))
	}
	if !svc.Remove(state, id) {
		t.Fatal("remove of a present id must report a change")
	}
	svc.Clear(state)
	if svc.Count(state) != 0 {
		t.Fatal("clear must empty the selection")
	}
}
