package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meganoshop/megano-backend/pkg/config"
)

type memStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memStore) CacheKey(parts ...string) string {
	return "megano:cache:" + strings.Join(parts, ":")
}

func testTTLs() config.CacheConfig {
	return config.CacheConfig{
		CategoriesTTL:      time.Hour,
		BannersTTL:         10 * time.Minute,
		ProductTTL:         24 * time.Hour,
		SellerListingsTTL:  24 * time.Hour,
		PopularProductsTTL: time.Hour,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := New(store, testTTLs())

	type banner struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	var got []banner
	hit, err := c.Get(ctx, Banners(), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Fatalf("expected miss on empty cache")
	}

	want := []banner{{ID: "b1", Title: "Autumn sale"}}
	if err := c.Set(ctx, Banners(), want); err != nil {
		t.Fatalf("set: %v", err)
	}

	hit, err = c.Get(ctx, Banners(), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit after set")
	}
	if len(got) != 1 || got[0].ID != "b1" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
	if ttl := store.ttls["megano:cache:banners"]; ttl != 10*time.Minute {
		t.Fatalf("expected banners ttl 10m, got %s", ttl)
	}
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := New(store, testTTLs())

	if err := c.Set(ctx, Product("p1"), map[string]string{"id": "p1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := store.values["megano:cache:product:p1"]; !ok {
		t.Fatalf("expected typed key megano:cache:product:p1, have %v", store.values)
	}

	if err := c.Invalidate(ctx, Product("p1"), Categories()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	var dest map[string]string
	hit, err := c.Get(ctx, Product("p1"), &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestCachePoisonedEntryReadsAsMiss(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := New(store, testTTLs())

	store.values["megano:cache:categories"] = "{not json"

	var dest []string
	hit, err := c.Get(ctx, Categories(), &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Fatalf("expected corrupt entry to read as miss")
	}
}
