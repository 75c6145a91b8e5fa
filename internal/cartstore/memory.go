package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/nexusmart/storefront/internal/domain"
)

type memoryEntry struct {
	items     map[string]int
	expiresAt time.Time
}

// MemoryRepository keeps carts in process memory. Expired carts are dropped on access.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryRepository{
		carts: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	entry, ok := m.carts[sessionID]
	m.mu.RUnlock()

	if !ok {
		return domain.NewCart(), nil
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.carts[sessionID]; ok && m.now().After(cur.expiresAt) {
			delete(m.carts, sessionID)
		}
		m.mu.Unlock()
		return domain.NewCart(), nil
	}
	return domain.CartFromItems(entry.items), nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart == nil || cart.IsEmpty() {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = memoryEntry{
		items:     cart.Items(),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// Len reports how many carts are held, expired or not.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.carts)
}
