package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/cache"
	pkgerrors "github.com/meganoshop/megano-backend/pkg/errors"
	"github.com/meganoshop/megano-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  parent_id TEXT,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  icon_url TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  sort_index INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS attributes (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(6)))),
  name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  group_name TEXT NOT NULL DEFAULT '',
  category_id TEXT
);`,
		`CREATE TABLE IF NOT EXISTS sellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS seller_products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  free_delivery INTEGER NOT NULL DEFAULT 0,
  is_limited INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}

	t.Cleanup(func() {
		for _, table := range []string{"categories", "attributes", "sellers", "seller_products"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	return db
}

func insertCategory(t *testing.T, db *gorm.DB, id uuid.UUID, parentID *uuid.UUID, title string, active bool, sortIndex int) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO categories (id, parent_id, title, slug, is_active, sort_index) VALUES (?, ?, ?, ?, ?, ?)",
		id, parentID, title, title, active, sortIndex,
	).Error
	require.NoError(t, err)
}

func TestCategoryWithChildIDs(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	parent := uuid.New()
	childA := uuid.New()
	childB := uuid.New()
	insertCategory(t, db, parent, nil, "electronics", true, 0)
	insertCategory(t, db, childA, &parent, "phones", true, 0)
	insertCategory(t, db, childB, &parent, "laptops", true, 1)
	insertCategory(t, db, uuid.New(), nil, "garden", true, 2)

	ids, err := repo.CategoryWithChildIDs(context.Background(), parent)
	require.NoError(t, err)

	assert.Len(t, ids, 3)
	assert.Contains(t, ids, parent)
	assert.Contains(t, ids, childA)
	assert.Contains(t, ids, childB)
}

func TestListCategoriesFiltersAndOrders(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	second := uuid.New()
	first := uuid.New()
	hidden := uuid.New()
	insertCategory(t, db, second, nil, "books", true, 2)
	insertCategory(t, db, first, nil, "appliances", true, 1)
	insertCategory(t, db, hidden, nil, "archive", false, 0)
	insertCategory(t, db, uuid.New(), &first, "fridges", true, 0)
	insertCategory(t, db, uuid.New(), &first, "seasonal", false, 1)

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "appliances", categories[0].Title)
	assert.Equal(t, "books", categories[1].Title)
	require.Len(t, categories[0].Children, 1)
	assert.Equal(t, "fridges", categories[0].Children[0].Title)
}

func TestListListingsCheapestFirst(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	sellerID := uuid.New()
	err := db.Exec(
		"INSERT INTO sellers (id, name, slug) VALUES (?, ?, ?)",
		sellerID, "TechTrade", "techtrade",
	).Error
	require.NoError(t, err)

	productID := uuid.New()
	for i, price := range []string{"199.90", "149.50", "450.00"} {
		err := db.Exec(
			"INSERT INTO seller_products (id, seller_id, product_id, price, quantity) VALUES (?, ?, ?, ?, ?)",
			uuid.New(), sellerID, productID, price, i+1,
		).Error
		require.NoError(t, err)
	}

	listings, err := repo.ListListings(context.Background(), productID)
	require.NoError(t, err)

	require.Len(t, listings, 3)
	assert.True(t, listings[0].Price.Equal(decimal.RequireFromString("149.50")))
	assert.True(t, listings[2].Price.Equal(decimal.RequireFromString("450.00")))
	require.NotNil(t, listings[0].Seller)
	assert.Equal(t, "TechTrade", listings[0].Seller.Name)
}

func TestAttributeNameTakenIgnoresCase(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	err := db.Exec(
		"INSERT INTO attributes (id, name, group_name) VALUES (?, ?, ?)",
		uuid.New(), "Screen Size", "display",
	).Error
	require.NoError(t, err)

	taken, err := repo.AttributeNameTaken(context.Background(), "display", "screen size")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.AttributeNameTaken(context.Background(), "battery", "screen size")
	require.NoError(t, err)
	assert.False(t, taken)
}

type noopCache struct{}

func (noopCache) Get(_ context.Context, _ cache.Key, _ any) (bool, error) { return false, nil }
func (noopCache) Set(_ context.Context, _ cache.Key, _ any) error         { return nil }
func (noopCache) Invalidate(_ context.Context, _ ...cache.Key) error      { return nil }

func TestCreateAttributeRejectsDuplicateInGroup(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Cache:  noopCache{},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)

	created, err := svc.CreateAttribute(context.Background(), AttributeInput{
		Name:  "Weight",
		Unit:  "kg",
		Group: "physical",
	})
	require.NoError(t, err)
	assert.Equal(t, "Weight", created.Name)

	_, err = svc.CreateAttribute(context.Background(), AttributeInput{Name: " weight ", Group: "physical"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = svc.CreateAttribute(context.Background(), AttributeInput{Name: "Weight", Group: "shipping"})
	require.NoError(t, err)
}

func TestCreateAttributeRequiresName(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Cache:  noopCache{},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)

	_, err = svc.CreateAttribute(context.Background(), AttributeInput{Name: "   "})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
