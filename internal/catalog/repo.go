package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/pagination"
)

const (
	minPriceSelect     = "COALESCE((SELECT MIN(sp.price) FROM seller_products sp WHERE sp.product_id = p.id), 0)"
	reviewsCountSelect = "(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id)"
	soldCountSelect    = "(SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi WHERE oi.product_id = p.id)"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type productSummaryRecord struct {
	ID           uuid.UUID      `gorm:"column:id"`
	CategoryID   uuid.UUID      `gorm:"column:category_id"`
	Title        string         `gorm:"column:title"`
	Slug         string         `gorm:"column:slug"`
	ImageURL     string         `gorm:"column:image_url"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[]"`
	MinPrice     decimal.Decimal `gorm:"column:min_price"`
	ReviewsCount int            `gorm:"column:reviews_count"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (r productSummaryRecord) toDTO() ProductSummary {
	return ProductSummary{
		ID:           r.ID,
		CategoryID:   r.CategoryID,
		Title:        r.Title,
		Slug:         r.Slug,
		ImageURL:     r.ImageURL,
		Tags:         []string(r.Tags),
		MinPrice:     r.MinPrice,
		ReviewsCount: r.ReviewsCount,
		CreatedAt:    r.CreatedAt,
	}
}

// ListProducts returns a filtered, sorted page of the catalog.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter, page pagination.Page) (ProductPage, error) {
	base := r.db.WithContext(ctx).
		Table("products p").
		Where("p.available = ?", true)

	if filter.CategoryID != nil {
		ids, err := r.CategoryWithChildIDs(ctx, *filter.CategoryID)
		if err != nil {
			return ProductPage{}, err
		}
		base = base.Where("p.category_id IN ?", ids)
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		base = base.Where("p.title ILIKE ?", "%"+title+"%")
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		base = base.Where("? = ANY(p.tags)", tag)
	}
	if filter.InStock {
		base = base.Where("EXISTS (SELECT 1 FROM seller_products sp WHERE sp.product_id = p.id AND sp.quantity > 0)")
	}
	if filter.FreeDelivery {
		base = base.Where("EXISTS (SELECT 1 FROM seller_products sp WHERE sp.product_id = p.id AND sp.free_delivery)")
	}
	if filter.PriceMin != nil {
		base = base.Where(minPriceSelect+" >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		base = base.Where(minPriceSelect+" <= ?", *filter.PriceMax)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return ProductPage{}, err
	}

	query := base.
		Select(strings.Join([]string{
			"p.id",
			"p.category_id",
			"p.title",
			"p.slug",
			"p.image_url",
			"p.tags",
			"p.created_at",
			minPriceSelect + " AS min_price",
			reviewsCountSelect + " AS reviews_count",
		}, ", ")).
		Order(orderClause(filter)).
		Limit(page.Limit).
		Offset(page.Offset)

	var records []productSummaryRecord
	if err := query.Scan(&records).Error; err != nil {
		return ProductPage{}, err
	}

	items := make([]ProductSummary, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDTO())
	}

	return ProductPage{
		Items:      items,
		Page:       page.Number,
		TotalPages: pagination.TotalPages(total, page.Limit),
		Total:      total,
	}, nil
}

func orderClause(filter ProductFilter) string {
	dir := "ASC"
	if filter.Descending {
		dir = "DESC"
	}
	switch filter.Sort {
	case SortPrice:
		return "min_price " + dir
	case SortReviews:
		return "reviews_count " + dir
	case SortPopularity:
		return soldCountSelect + " " + dir
	case SortNewest:
		return "p.created_at " + dir
	default:
		return "p.created_at DESC"
	}
}

// FindProductByID loads a product with its attributes and listings.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes.Attribute").
		Preload("Listings.Seller").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListListings returns the seller offers of a product, cheapest first.
func (r *Repository) ListListings(ctx context.Context, productID uuid.UUID) ([]models.SellerProduct, error) {
	var listings []models.SellerProduct
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("product_id = ?", productID).
		Order("price ASC").
		Find(&listings).
		Error
	return listings, err
}

// ListCategories returns active top-level categories with their children,
// ordered by sort index.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Children", "is_active = ?", true).
		Where("parent_id IS NULL AND is_active = ?", true).
		Order("sort_index ASC, title ASC").
		Find(&categories).
		Error
	return categories, err
}

// CategoryWithChildIDs returns the category id plus its direct children.
func (r *Repository) CategoryWithChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? OR parent_id = ?", id, id).
		Pluck("id", &ids).
		Error
	return ids, err
}

// PopularCategories returns the top categories by product count with the
// cheapest price inside each.
func (r *Repository) PopularCategories(ctx context.Context, limit int) ([]PopularCategory, error) {
	type record struct {
		ID           uuid.UUID       `gorm:"column:id"`
		Title        string          `gorm:"column:title"`
		IconURL      string          `gorm:"column:icon_url"`
		ProductCount int             `gorm:"column:product_count"`
		MinPrice     decimal.Decimal `gorm:"column:min_price"`
	}

	var records []record
	err := r.db.WithContext(ctx).
		Table("categories c").
		Select(strings.Join([]string{
			"c.id",
			"c.title",
			"c.icon_url",
			"(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.available) AS product_count",
			"COALESCE((SELECT MIN(sp.price) FROM seller_products sp JOIN products p ON p.id = sp.product_id WHERE p.category_id = c.id), 0) AS min_price",
		}, ", ")).
		Where("c.is_active = ?", true).
		Order("product_count DESC").
		Limit(limit).
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}

	out := make([]PopularCategory, 0, len(records))
	for _, rec := range records {
		out = append(out, PopularCategory{
			ID:           rec.ID,
			Title:        rec.Title,
			IconURL:      rec.IconURL,
			ProductCount: rec.ProductCount,
			MinPrice:     rec.MinPrice,
		})
	}
	return out, nil
}

// PopularProducts returns the best-selling products.
func (r *Repository) PopularProducts(ctx context.Context, limit int) ([]ProductSummary, error) {
	query := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id",
			"p.category_id",
			"p.title",
			"p.slug",
			"p.image_url",
			"p.tags",
			"p.created_at",
			minPriceSelect + " AS min_price",
			reviewsCountSelect + " AS reviews_count",
		}, ", ")).
		Where("p.available = ?", true).
		Order(soldCountSelect + " DESC").
		Limit(limit)

	var records []productSummaryRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, err
	}
	items := make([]ProductSummary, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDTO())
	}
	return items, nil
}

// LimitedProducts returns products that have a limited-edition listing.
func (r *Repository) LimitedProducts(ctx context.Context, limit int) ([]ProductSummary, error) {
	query := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id",
			"p.category_id",
			"p.title",
			"p.slug",
			"p.image_url",
			"p.tags",
			"p.created_at",
			minPriceSelect + " AS min_price",
			reviewsCountSelect + " AS reviews_count",
		}, ", ")).
		Where("p.available = ?", true).
		Where("EXISTS (SELECT 1 FROM seller_products sp WHERE sp.product_id = p.id AND sp.is_limited)").
		Order("p.created_at DESC").
		Limit(limit)

	var records []productSummaryRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, err
	}
	items := make([]ProductSummary, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDTO())
	}
	return items, nil
}

// RecordView upserts the browsing-history row for a user and product.
func (r *Repository) RecordView(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO viewed_products (user_id, product_id, viewed_at) VALUES (?, ?, now())
ON CONFLICT (user_id, product_id) DO UPDATE SET viewed_at = now()`, userID, productID).
		Error
}

// ListViewed returns the most recently viewed products of a user.
func (r *Repository) ListViewed(ctx context.Context, userID uuid.UUID, limit int) ([]models.ViewedProduct, error) {
	var rows []models.ViewedProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}
