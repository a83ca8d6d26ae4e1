package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedRepository is a read-through cache in front of the Postgres
// repository. Product reads dominate storefront traffic, so GetByID and
// List are cached in Redis with a jittered TTL; admin writes invalidate.
// Cache failures degrade to the database, they never fail the request.
type CachedRepository struct {
	inner   Repository
	client  *redis.Client
	baseTTL time.Duration
	logger  *log.Logger
	sfg     singleflight.Group // collapses concurrent misses for the same key
}

func NewCachedRepository(inner Repository, client *redis.Client, logger *log.Logger) *CachedRepository {
	return &CachedRepository{
		inner:   inner,
		client:  client,
		baseTTL: 15 * time.Minute,
		logger:  logger,
	}
}

func productKey(productID string) string { return "product:" + productID }

func listKey(f Filter) string {
	return fmt.Sprintf("products:%s:featured=%t", f.Category, f.FeaturedOnly)
}

func (c *CachedRepository) GetByID(ctx context.Context, productID string) (*Product, error) {
	v, err, _ := c.sfg.Do(productKey(productID), func() (any, error) {
		var p Product
		if ok := c.fetch(ctx, productKey(productID), &p); ok {
			return &p, nil
		}

		fresh, err := c.inner.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		c.store(productKey(productID), fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Product), nil
}

func (c *CachedRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	v, err, _ := c.sfg.Do(listKey(f), func() (any, error) {
		var products []Product
		if ok := c.fetch(ctx, listKey(f), &products); ok {
			return products, nil
		}

		fresh, err := c.inner.List(ctx, f)
		if err != nil {
			return nil, err
		}
		c.store(listKey(f), fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Product), nil
}

// GetVariant is never cached: checkout reads price and stock from it and
// must see the live row.
func (c *CachedRepository) GetVariant(ctx context.Context, productID, variantKey string) (Variant, error) {
	return c.inner.GetVariant(ctx, productID, variantKey)
}

func (c *CachedRepository) Create(ctx context.Context, p *Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(p.ID)
	return nil
}

func (c *CachedRepository) Update(ctx context.Context, p *Product) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(p.ID)
	return nil
}

func (c *CachedRepository) Delete(ctx context.Context, productID string) error {
	if err := c.inner.Delete(ctx, productID); err != nil {
		return err
	}
	c.invalidate(productID)
	return nil
}

func (c *CachedRepository) SetStock(ctx context.Context, productID, variantKey string, stockCount int) error {
	if err := c.inner.SetStock(ctx, productID, variantKey, stockCount); err != nil {
		return err
	}
	c.invalidate(productID)
	return nil
}

func (c *CachedRepository) fetch(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("catalog cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Printf("catalog cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *CachedRepository) store(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Printf("catalog cache encode %s: %v", key, err)
		return
	}
	// Jitter spreads expiry so hot keys don't all miss at once.
	ttl := c.baseTTL + time.Duration(rand.Intn(60))*time.Second
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			c.logger.Printf("catalog cache set %s: %v", key, err)
		}
	}()
}

func (c *CachedRepository) invalidate(productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	keys := []string{productKey(productID)}
	// List caches are few and enumerable: every category plus the
	// unfiltered views, each with and without the featured flag.
	for _, cat := range append([]string{"", "all"}, Categories...) {
		keys = append(keys, listKey(Filter{Category: cat}), listKey(Filter{Category: cat, FeaturedOnly: true}))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Printf("catalog cache invalidate %s: %v", productID, err)
	}
}
