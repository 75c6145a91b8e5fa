// Package cartstore persists per-session carts.
package cartstore

import (
	"context"
	"time"

	"github.com/nexusmart/storefront/internal/domain"
)

// DefaultTTL matches the session cookie lifetime; a cart is dropped once its
// session could no longer present it.
const DefaultTTL = 14 * 24 * time.Hour

// Repository stores one cart per session id. Load never fails for a
// missing cart: it returns an empty one. Saving an empty cart deletes it.
// Save replaces the whole cart, so concurrent writers on one session are last-write-wins.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
