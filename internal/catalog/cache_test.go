package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	p := &domain.Product{ID: 7, Name: "Gaming Headset", Price: decimal.RequireFromString("79.90")}
	require.NoError(t, cache.Set(ctx, p))
	assert.True(t, mr.Exists("product:7"))

	ttl := mr.TTL("product:7")
	assert.True(t, ttl >= 10*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 15*time.Minute, "TTL should be base + max jitter")

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Gaming Headset", got.Name)
	assert.True(t, got.Price.Equal(p.Price))
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("product:1", `{"id":`))

	_, err := cache.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "unmarshal product failed")
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("product:3", `{}`))

	require.NoError(t, cache.Delete(ctx, 3))
	assert.False(t, mr.Exists("product:3"))
	assert.NoError(t, cache.Delete(ctx, 3))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "product:42", cacheKey(42))
}

type countingReader struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	calls    atomic.Int32
	delay    time.Duration
}

func (r *countingReader) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *countingReader) ListProducts(context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, int64) (*domain.Product, error) {
	return nil, errors.New("redis down")
}
func (failingCache) Set(context.Context, *domain.Product) error { return errors.New("redis down") }
func (failingCache) Delete(context.Context, int64) error       { return errors.New("redis down") }

func TestCachedCatalog_FillsCacheOnMiss(t *testing.T) {
	cache, mr := setupTestRedis(t)
	reader := &countingReader{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "USB-C Hub", Price: decimal.RequireFromString("49.99")},
	}}
	sut := NewCachedCatalog(reader, cache, zap.NewNop())

	p, err := sut.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "USB-C Hub", p.Name)

	require.Eventually(t, func() bool {
		return mr.Exists("product:1")
	}, time.Second, 10*time.Millisecond, "product was not set in cache")

	_, err = sut.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), reader.calls.Load())
}

func TestCachedCatalog_NotFoundPassesThrough(t *testing.T) {
	cache, _ := setupTestRedis(t)
	sut := NewCachedCatalog(&countingReader{products: map[int64]*domain.Product{}}, cache, zap.NewNop())

	_, err := sut.GetProduct(context.Background(), 5)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCachedCatalog_CacheErrorFallsBackToRepo(t *testing.T) {
	reader := &countingReader{products: map[int64]*domain.Product{
		2: {ID: 2, Name: "Portable SSD", Price: decimal.RequireFromString("99.99")},
	}}
	sut := NewCachedCatalog(reader, failingCache{}, zap.NewNop())

	p, err := sut.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Portable SSD", p.Name)
}

func TestCachedCatalog_CollapsesConcurrentMisses(t *testing.T) {
	cache, _ := setupTestRedis(t)
	reader := &countingReader{
		products: map[int64]*domain.Product{1: {ID: 1, Name: "4K Monitor"}},
		delay:    50 * time.Millisecond,
	}
	sut := NewCachedCatalog(reader, cache, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sut.GetProduct(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, reader.calls.Load(), int32(10))
}

func TestCachedCatalog_Invalidate(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("product:4", `{"id":4}`))
	sut := NewCachedCatalog(&countingReader{}, cache, zap.NewNop())

	sut.Invalidate(context.Background(), 4)
	assert.False(t, mr.Exists("product:4"))
}

type gatedReader struct {
	product *domain.Product
	started chan struct{}
	release chan struct{}
}

func (r *gatedReader) GetProduct(context.Context, int64) (*domain.Product, error) {
	close(r.started)
	<-r.release
	cp := *r.product
	return &cp, nil
}

func (r *gatedReader) ListProducts(context.Context) ([]*domain.Product, error) {
	return nil, nil
}

func TestCachedCatalog_InvalidateDuringLookupSkipsFill(t *testing.T) {
	cache, mr := setupTestRedis(t)
	reader := &gatedReader{
		product: &domain.Product{ID: 3, Name: "Old Name", Price: decimal.RequireFromString("19.99")},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sut := NewCachedCatalog(reader, cache, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := sut.GetProduct(context.Background(), 3)
		done <- err
	}()

	<-reader.started
	sut.Invalidate(context.Background(), 3)
	close(reader.release)
	require.NoError(t, <-done)

	sut.fills.Wait()
	assert.False(t, mr.Exists("product:3"), "stale product must not be cached after invalidation")
}

func TestCachedCatalog_FillAfterInvalidateIsKept(t *testing.T) {
	cache, mr := setupTestRedis(t)
	reader := &countingReader{products: map[int64]*domain.Product{
		3: {ID: 3, Name: "New Name", Price: decimal.RequireFromString("24.99")},
	}}
	sut := NewCachedCatalog(reader, cache, zap.NewNop())

	sut.Invalidate(context.Background(), 3)
	_, err := sut.GetProduct(context.Background(), 3)
	require.NoError(t, err)

	sut.fills.Wait()
	assert.True(t, mr.Exists("product:3"))
}
