package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("product not in cache")

const productCachePrefix = "petloc:produto:"

// ProductCache keeps individual products in Redis so the storefront does not
// hit Mongo for every product-page view.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context, id string) (*Produto, error) {
	data, err := c.client.Get(ctx, productCachePrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var p Produto
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal cached product: %w", err)
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, p *Produto) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	return c.client.Set(ctx, productCachePrefix+p.ID, data, c.ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, productCachePrefix+id).Err()
}
