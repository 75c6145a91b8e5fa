package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nexusmart/storefront/internal/catalog"
	"github.com/nexusmart/storefront/internal/domain"
	"go.uber.org/zap"
)

// ProductLookup is the single-product read the resolver needs.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// Resolver joins a cart against the catalog.
type Resolver struct {
	products ProductLookup
	logger   *zap.Logger
}

func NewResolver(products ProductLookup, logger *zap.Logger) *Resolver {
	return &Resolver{products: products, logger: logger}
}

// Resolve returns line items ordered by product id. Entries whose key is not
// a product id, or whose product no longer exists, are removed from cart and
// reported in pruned; the caller decides whether to persist the pruned cart.
// Any other catalog failure aborts resolution and leaves cart untouched.
func (r *Resolver) Resolve(ctx context.Context, cart *domain.Cart) (items []domain.LineItem, pruned []string, err error) {
	keys := cart.Keys()
	items = make([]domain.LineItem, 0, len(keys))
	var stale []string

	for _, key := range keys {
		id, err := ParseProductID(key)
		if err != nil {
			stale = append(stale, key)
			continue
		}

		p, err := r.products.GetProduct(ctx, id)
		if errors.Is(err, catalog.ErrProductNotFound) {
			stale = append(stale, key)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("resolve product %d: %w", id, err)
		}

		items = append(items, domain.NewLineItem(p, cart.Quantity(key)))
	}

	for _, key := range stale {
		cart.Remove(key)
		r.logger.Info("pruned stale cart entry", zap.String("product_key", key))
	}
	return items, stale, nil
}

// ParseProductID accepts the decimal string form of a positive product id.
func ParseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProductID, s)
	}
	return id, nil
}
