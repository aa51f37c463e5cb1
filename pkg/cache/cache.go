package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meganoshop/megano-backend/pkg/config"
)

// Key is a typed cache key. Every cached entity gets a constructor below so
// invalidation triggers are greppable instead of ad hoc strings.
type Key struct {
	kind  Kind
	parts []string
}

// Kind selects the TTL bucket for a key.
type Kind string

const (
	KindCategories      Kind = "categories"
	KindBanners         Kind = "banners"
	KindProduct         Kind = "product"
	KindSellerListings  Kind = "seller_listings"
	KindPopularProducts Kind = "popular_products"
	KindLimitedProducts Kind = "limited_products"
)

// Categories caches the category tree. Invalidated on category writes.
func Categories() Key { return Key{kind: KindCategories} }

// Banners caches the active banner selection. Invalidated on banner writes.
func Banners() Key { return Key{kind: KindBanners} }

// Product caches a single product payload. Invalidated on product writes.
func Product(id string) Key { return Key{kind: KindProduct, parts: []string{id}} }

// SellerListings caches the seller listings of a product. Invalidated on
// seller-listing writes for that product.
func SellerListings(productID string) Key {
	return Key{kind: KindSellerListings, parts: []string{productID}}
}

// PopularProducts caches the popularity ranking. Invalidated on order and
// seller-listing writes.
func PopularProducts() Key { return Key{kind: KindPopularProducts} }

// LimitedProducts caches the limited-edition selection. Invalidated on
// seller-listing writes.
func LimitedProducts() Key { return Key{kind: KindLimitedProducts} }

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Cache is a read-through JSON cache with per-kind TTLs.
type Cache struct {
	store store
	ttls  config.CacheConfig
}

func New(store store, ttls config.CacheConfig) *Cache {
	return &Cache{store: store, ttls: ttls}
}

// Get unmarshals the cached value into dest; the bool reports a hit.
func (c *Cache) Get(ctx context.Context, key Key, dest any) (bool, error) {
	raw, err := c.store.Get(ctx, c.redisKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// a poisoned entry behaves like a miss; the caller refreshes it
		return false, nil
	}
	return true, nil
}

// Set marshals value and stores it with the TTL of the key's kind.
func (c *Cache) Set(ctx context.Context, key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.redisKey(key), string(raw), c.ttl(key.kind))
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		redisKeys = append(redisKeys, c.redisKey(key))
	}
	return c.store.Del(ctx, redisKeys...)
}

func (c *Cache) redisKey(key Key) string {
	return c.store.CacheKey(append([]string{string(key.kind)}, key.parts...)...)
}

func (c *Cache) ttl(kind Kind) time.Duration {
	switch kind {
	case KindCategories:
		return c.ttls.CategoriesTTL
	case KindBanners:
		return c.ttls.BannersTTL
	case KindProduct:
		return c.ttls.ProductTTL
	case KindSellerListings:
		return c.ttls.SellerListingsTTL
	case KindPopularProducts, KindLimitedProducts:
		return c.ttls.PopularProductsTTL
	default:
		return time.Hour
	}
}
