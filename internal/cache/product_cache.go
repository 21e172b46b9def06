package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/eshop-service/internal/domain"
)

const (
	versionKey = "products:version"
	listPrefix = "products:list"
)

// ProductCache caches product listings. Entries are keyed by a version
// counter so a single INCR invalidates every cached listing.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache returns a cache, or nil when client is nil. A nil
// *ProductCache is valid and never hits.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

// GetList returns the cached listing for the category filter.
func (c *ProductCache) GetList(ctx context.Context, categoryIDs []string) ([]domain.Product, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	key, err := c.listKey(ctx, categoryIDs)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached products: %w", err)
	}
	return products, true, nil
}

// SetList stores a listing for the category filter.
func (c *ProductCache) SetList(ctx context.Context, categoryIDs []string, products []domain.Product) error {
	if c == nil {
		return nil
	}
	key, err := c.listKey(ctx, categoryIDs)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops every cached listing.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

func (c *ProductCache) listKey(ctx context.Context, categoryIDs []string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	ids := append([]string(nil), categoryIDs...)
	sort.Strings(ids)
	filter := strings.Join(ids, ",")
	if filter == "" {
		filter = "*"
	}
	return fmt.Sprintf("%s:v%d:%s", listPrefix, version, filter), nil
}
