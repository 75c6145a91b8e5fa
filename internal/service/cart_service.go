package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexusmart/storefront/internal/cartstore"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/pricing"
	"go.uber.org/zap"
)

// MaxQuantity bounds a single cart line.
const MaxQuantity = 99

// CartUpdate describes the effect of a cart mutation.
type CartUpdate struct {
	ProductName string
	Changed     bool
	Removed     bool
	View        *domain.CartView
}

type CartService struct {
	carts    cartstore.Repository
	products ProductLookup
	resolver *Resolver
	rules    pricing.Rules
	logger   *zap.Logger
}

func NewCartService(carts cartstore.Repository, products ProductLookup, rules pricing.Rules, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		resolver: NewResolver(products, logger),
		rules:    rules,
		logger:   logger,
	}
}

// View resolves the session's cart, persisting any pruning it caused.
func (s *CartService) View(ctx context.Context, sessionID string) (*domain.CartView, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.resolveAndSave(ctx, sessionID, cart, false)
}

// Add increments the product's quantity, capped at MaxQuantity.
func (s *CartService) Add(ctx context.Context, sessionID, productKey string, quantity int) (*CartUpdate, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	id, err := ParseProductID(productKey)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("add product %d: %w", id, err)
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	key := domain.ProductKey(id)
	cart.Set(key, min(cart.Quantity(key)+quantity, MaxQuantity))

	view, err := s.resolveAndSave(ctx, sessionID, cart, true)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cart item added",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", id),
		zap.Int("quantity", quantity))

	return &CartUpdate{ProductName: product.Name, Changed: true, View: view}, nil
}

// Update sets the quantity of an entry already in the cart, capped at
// MaxQuantity. A quantity of zero or less removes it. Updating an entry that
// is not in the cart changes nothing.
func (s *CartService) Update(ctx context.Context, sessionID, productKey string, quantity int) (*CartUpdate, error) {
	quantity = max(min(quantity, MaxQuantity), 0)

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	update := &CartUpdate{}
	if cart.Contains(productKey) {
		cart.Set(productKey, quantity)
		update.Changed = true
		update.Removed = quantity == 0
	}

	update.View, err = s.resolveAndSave(ctx, sessionID, cart, update.Changed)
	if err != nil {
		return nil, err
	}
	return update, nil
}

// Remove deletes an entry. Removing an absent entry is a no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, productKey string) (*CartUpdate, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	update := &CartUpdate{}
	if cart.Contains(productKey) {
		update.ProductName = s.productName(ctx, productKey)
		cart.Remove(productKey)
		update.Changed = true
		update.Removed = true
	}

	update.View, err = s.resolveAndSave(ctx, sessionID, cart, update.Changed)
	if err != nil {
		return nil, err
	}
	return update, nil
}

// Count is the sum of quantities as stored, without resolving against the catalog.
func (s *CartService) Count(ctx context.Context, sessionID string) (int, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("load cart: %w", err)
	}
	return cart.Count(), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) resolveAndSave(ctx context.Context, sessionID string, cart *domain.Cart, dirty bool) (*domain.CartView, error) {
	items, pruned, err := s.resolver.Resolve(ctx, cart)
	if err != nil {
		return nil, err
	}
	if dirty || len(pruned) > 0 {
		if err := s.carts.Save(ctx, sessionID, cart); err != nil {
			return nil, fmt.Errorf("save cart: %w", err)
		}
	}
	return &domain.CartView{
		Items:     items,
		Summary:   s.rules.Summarize(items),
		CartCount: cart.Count(),
	}, nil
}

func (s *CartService) productName(ctx context.Context, productKey string) string {
	id, err := ParseProductID(productKey)
	if err != nil {
		return "Item"
	}
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			s.logger.Warn("product lookup failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return "Item"
	}
	return p.Name
}

// ParseQuantity reads a quantity form value. An empty value means def.
func ParseQuantity(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return q, nil
}
