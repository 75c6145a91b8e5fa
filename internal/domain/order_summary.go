package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultImageURL is shown for line items whose product has no image.
const DefaultImageURL = "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=100&h=100&fit=crop"

// LineItem is a cart entry resolved against the catalog.
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	ImageURL  string          `json:"image"`
}

func NewLineItem(p *Product, quantity int) LineItem {
	image := p.ImageURL
	if image == "" {
		image = DefaultImageURL
	}
	unit := p.Price.Round(2)
	return LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: unit,
		Quantity:  quantity,
		Total:     unit.Mul(decimal.NewFromInt(int64(quantity))),
		ImageURL:  image,
	}
}

type OrderSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CartView is what the cart page and incremental updates show.
type CartView struct {
	Items     []LineItem   `json:"cart_items"`
	Summary   OrderSummary `json:"summary"`
	CartCount int          `json:"cart_count"`
}

type CheckoutReview struct {
	Status  CheckoutStatus `json:"status"`
	Items   []LineItem     `json:"items"`
	Summary OrderSummary   `json:"order_summary"`
}

type OrderConfirmation struct {
	OrderID  string         `json:"order_id"`
	Status   CheckoutStatus `json:"status"`
	Summary  OrderSummary   `json:"order_summary"`
	PlacedAt time.Time      `json:"placed_at"`
}

// OrderPlaced is the event emitted when a checkout is confirmed.
type OrderPlaced struct {
	OrderID   string       `json:"order_id"`
	SessionID string       `json:"session_id"`
	Items     []LineItem   `json:"items"`
	Summary   OrderSummary `json:"summary"`
	Currency  string       `json:"currency"`
	PlacedAt  time.Time    `json:"placed_at"`
}

// MarshalJSON renders money fields with exactly two decimal places.
func (s OrderSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}{
		Subtotal: s.Subtotal.StringFixed(2),
		Shipping: s.Shipping.StringFixed(2),
		Tax:      s.Tax.StringFixed(2),
		Total:    s.Total.StringFixed(2),
	})
}

func (i LineItem) MarshalJSON() ([]byte, error) {
	type alias LineItem
	return json.Marshal(struct {
		alias
		UnitPrice string `json:"price"`
		Total     string `json:"total"`
	}{
		alias:     alias(i),
		UnitPrice: i.UnitPrice.StringFixed(2),
		Total:     i.Total.StringFixed(2),
	})
}
