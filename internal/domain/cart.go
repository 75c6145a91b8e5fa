package domain

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Cart maps a product id key to a quantity. Quantities are always >= 1: any
// mutation that would leave an entry at zero or below removes it instead.
type Cart struct {
	items map[string]int
}

func NewCart() *Cart {
	return &Cart{items: make(map[string]int)}
}

// CartFromItems builds a cart from a raw mapping, dropping non-positive entries.
func CartFromItems(items map[string]int) *Cart {
	c := NewCart()
	for key, qty := range items {
		c.Set(key, qty)
	}
	return c
}

func ProductKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// Set upserts the entry when quantity > 0 and removes it otherwise.
func (c *Cart) Set(key string, quantity int) {
	if quantity <= 0 {
		delete(c.items, key)
		return
	}
	c.items[key] = quantity
}

// Add increments the quantity for key, removing the entry if the result is not positive.
func (c *Cart) Add(key string, quantity int) {
	c.Set(key, c.items[key]+quantity)
}

func (c *Cart) Remove(key string) {
	delete(c.items, key)
}

func (c *Cart) Clear() {
	c.items = make(map[string]int)
}

func (c *Cart) Quantity(key string) int {
	return c.items[key]
}

func (c *Cart) Contains(key string) bool {
	_, ok := c.items[key]
	return ok
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count is the total number of units across all entries.
func (c *Cart) Count() int {
	total := 0
	for _, qty := range c.items {
		total += qty
	}
	return total
}

// Keys returns entry keys ordered by numeric product id. Keys that are not
// valid ids sort after the numeric ones, lexicographically.
func (c *Cart) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseInt(keys[i], 10, 64)
		b, errB := strconv.ParseInt(keys[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Items returns a copy of the underlying mapping.
func (c *Cart) Items() map[string]int {
	out := make(map[string]int, len(c.items))
	for key, qty := range c.items {
		out[key] = qty
	}
	return out
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = *CartFromItems(raw)
	return nil
}
