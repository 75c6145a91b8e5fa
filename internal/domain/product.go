package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PriceCents returns the price in minor units, which is how it is persisted.
func (p *Product) PriceCents() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}

// PriceFromCents converts a persisted minor-unit amount back to a decimal.
func PriceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price string `json:"price"`
	}{
		alias: alias(p),
		Price: p.Price.StringFixed(2),
	})
}
