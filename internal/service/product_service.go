package service

import (
	"context"
	"fmt"

	"github.com/nexusmart/storefront/internal/domain"
)

// FeaturedLimit is how many products the home page shows.
const FeaturedLimit = 4

// ProductLister is the list side of the catalog used by storefront pages.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
}

// ProductService serves the public catalog pages. Single lookups go through
// lookup, which may be cached.
type ProductService struct {
	lister ProductLister
	lookup ProductLookup
}

func NewProductService(lister ProductLister, lookup ProductLookup) *ProductService {
	return &ProductService{lister: lister, lookup: lookup}
}

func (s *ProductService) Featured(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.lister.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return products, nil
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.lister.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, productKey string) (*domain.Product, error) {
	id, err := ParseProductID(productKey)
	if err != nil {
		return nil, err
	}
	p, err := s.lookup.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}
