package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/nexusmart/storefront/internal/catalog"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type mockCatalog struct {
	m        sync.RWMutex
	products map[int64]*domain.Product
	err      error
	calls    int
}

func newMockCatalog(products ...*domain.Product) *mockCatalog {
	c := &mockCatalog{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func product(id int64, name, price string) *domain.Product {
	return &domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func (c *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *mockCatalog) ListProducts(context.Context) ([]*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]*domain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *mockCatalog) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	all, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (c *mockCatalog) ListRecent(ctx context.Context, limit int) ([]*domain.Product, error) {
	all, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (c *mockCatalog) CountProducts(context.Context) (int64, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return 0, c.err
	}
	return int64(len(c.products)), nil
}

func (c *mockCatalog) SearchProducts(ctx context.Context, _ string) ([]*domain.Product, error) {
	return c.ListProducts(ctx)
}

func (c *mockCatalog) CreateProduct(_ context.Context, p *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	p.ID = int64(len(c.products) + 1)
	c.products[p.ID] = p
	return nil
}

func (c *mockCatalog) UpdateProduct(_ context.Context, p *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	c.products[p.ID] = p
	return nil
}

func (c *mockCatalog) DeleteProduct(_ context.Context, id int64) error {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(c.products, id)
	return nil
}

type mockPublisher struct {
	m      sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, event domain.OrderPlaced) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type mockInvalidator struct {
	ids []int64
}

func (i *mockInvalidator) Invalidate(_ context.Context, id int64) {
	i.ids = append(i.ids, id)
}

// failingStore fails every operation, standing in for an unreachable backend.
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Load(context.Context, string) (*domain.Cart, error) { return nil, errStoreDown }
func (failingStore) Save(context.Context, string, *domain.Cart) error   { return errStoreDown }
func (failingStore) Delete(context.Context, string) error               { return errStoreDown }
