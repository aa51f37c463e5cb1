package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meganoshop/megano-backend/pkg/migrate"
)

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS attributes",
		"CREATE TABLE IF NOT EXISTS product_attributes",
		"CREATE TABLE IF NOT EXISTS sellers",
		"CREATE TABLE IF NOT EXISTS seller_products",
		"CREATE TABLE IF NOT EXISTS reviews",
		"CREATE TABLE IF NOT EXISTS viewed_products",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_seller_products_seller_product",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_attributes_product_attribute",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDiscountMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_discount_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no discount migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_discounts",
		"CREATE TABLE IF NOT EXISTS product_discount_targets",
		"CREATE TABLE IF NOT EXISTS bundle_discounts",
		"CREATE TABLE IF NOT EXISTS bundle_discount_entries",
		"CREATE TABLE IF NOT EXISTS cart_discounts",
		"CHECK (percent BETWEEN 1 AND 99)",
		"CHECK (valid_to > valid_from)",
		"CHECK (group_no IN (1, 2))",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
