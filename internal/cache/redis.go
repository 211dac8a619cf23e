// Package cache holds the Redis read-through cache for the product list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grocery-api/internal/domain"
)

// ErrCacheMiss is returned when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

const productListKey = "catalog:products"

// ProductCache stores the full product list under a single key.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, productListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}
	return products, nil
}

func (c *ProductCache) Set(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}
	if err := c.client.Set(ctx, productListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached list after any catalog write.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productListKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
