package catalog

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/nexusmart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Reader is the read side of the catalog the cart depends on.
type Reader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

// CachedCatalog puts a ProductCache in front of a Reader for single-product lookups.
// A fill started before an Invalidate of the same product never survives it.
type CachedCatalog struct {
	repo   Reader
	cache  ProductCache
	logger *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede

	mu       sync.Mutex
	versions map[int64]uint64
	fills    sync.WaitGroup
}

func NewCachedCatalog(repo Reader, cache ProductCache, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		versions: make(map[int64]uint64),
	}
}

func (c *CachedCatalog) version(id int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id]
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := c.sfg.Do(flightKey(id), func() (interface{}, error) {
		p, err := c.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("product cache get failed", zap.Int64("product_id", id), zap.Error(err))
		}

		ver := c.version(id)
		p, err = c.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		c.fills.Add(1)
		go c.fill(p, ver)

		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (c *CachedCatalog) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return c.repo.ListProducts(ctx)
}

// fill caches p unless the product was invalidated after it was read at ver.
// An invalidation racing the write is undone by deleting the entry again.
func (c *CachedCatalog) fill(p *domain.Product, ver uint64) {
	defer c.fills.Done()
	if c.version(p.ID) != ver {
		return
	}

	setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.cache.Set(setCtx, p); err != nil {
		c.logger.Warn("product cache set failed", zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}
	if c.version(p.ID) != ver {
		if err := c.cache.Delete(setCtx, p.ID); err != nil {
			c.logger.Warn("product cache invalidate failed", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}
}

// Invalidate drops a product from the cache after it was changed or deleted.
func (c *CachedCatalog) Invalidate(ctx context.Context, id int64) {
	c.mu.Lock()
	c.versions[id]++
	c.mu.Unlock()
	c.sfg.Forget(flightKey(id))

	if err := c.cache.Delete(ctx, id); err != nil {
		c.logger.Warn("product cache invalidate failed", zap.Int64("product_id", id), zap.Error(err))
	}
}

func flightKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
