package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nexusmart/storefront/internal/cartstore"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/pricing"
	"go.uber.org/zap"
)

// OrderPublisher announces confirmed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
}

type CheckoutService struct {
	carts     cartstore.Repository
	resolver  *Resolver
	rules     pricing.Rules
	publisher OrderPublisher
	currency  string
	logger    *zap.Logger

	now     func() time.Time
	orderID func() string
}

func NewCheckoutService(
	carts cartstore.Repository,
	products ProductLookup,
	rules pricing.Rules,
	publisher OrderPublisher,
	currency string,
	logger *zap.Logger) *CheckoutService {

	return &CheckoutService{
		carts:     carts,
		resolver:  NewResolver(products, logger),
		rules:     rules,
		publisher: publisher,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
		orderID:   func() string { return uuid.NewString() },
	}
}

// Begin enters the review step. It refuses with ErrEmptyCart when nothing in
// the cart resolves.
func (s *CheckoutService) Begin(ctx context.Context, sessionID string) (*domain.CheckoutReview, error) {
	items, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &domain.CheckoutReview{
		Status:  domain.CheckoutStatusReview,
		Items:   items,
		Summary: s.rules.Summarize(items),
	}, nil
}

// Confirm places the order and empties the cart. If the order cannot be
// published the cart is left as it was.
func (s *CheckoutService) Confirm(ctx context.Context, sessionID string) (*domain.OrderConfirmation, error) {
	items, err := s.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	event := domain.OrderPlaced{
		OrderID:   s.orderID(),
		SessionID: sessionID,
		Items:     items,
		Summary:   s.rules.Summarize(items),
		Currency:  s.currency,
		PlacedAt:  s.now().UTC(),
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("failed to publish order",
			zap.String("order_id", event.OrderID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("publish order: %w", err)
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", event.OrderID),
		zap.Int("items", len(items)),
		zap.String("total", event.Summary.Total.StringFixed(2)))

	return &domain.OrderConfirmation{
		OrderID:  event.OrderID,
		Status:   domain.CheckoutStatusConfirmed,
		Summary:  event.Summary,
		PlacedAt: event.PlacedAt,
	}, nil
}

func (s *CheckoutService) snapshot(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items, pruned, err := s.resolver.Resolve(ctx, cart)
	if err != nil {
		return nil, err
	}
	if len(pruned) > 0 {
		if err := s.carts.Save(ctx, sessionID, cart); err != nil {
			return nil, fmt.Errorf("save cart: %w", err)
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	return items, nil
}
