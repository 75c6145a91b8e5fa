package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItem_DefaultImage(t *testing.T) {
	p := &Product{ID: 3, Name: "Mouse", Price: decimal.RequireFromString("34.99")}

	li := NewLineItem(p, 2)
	assert.Equal(t, DefaultImageURL, li.ImageURL)
	assert.Equal(t, "69.98", li.Total.StringFixed(2))

	p.ImageURL = "https://example.com/m.jpg"
	assert.Equal(t, "https://example.com/m.jpg", NewLineItem(p, 1).ImageURL)
}

func TestOrderSummary_MarshalsTwoPlaces(t *testing.T) {
	s := OrderSummary{
		Subtotal: decimal.NewFromInt(25),
		Shipping: decimal.RequireFromString("9.99"),
		Tax:      decimal.NewFromInt(5),
		Total:    decimal.RequireFromString("39.99"),
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subtotal":"25.00","shipping":"9.99","tax":"5.00","total":"39.99"}`, string(data))
}

func TestProduct_PriceCentsRoundTrip(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("129.99")}
	assert.Equal(t, int64(12999), p.PriceCents())
	assert.True(t, PriceFromCents(12999).Equal(p.Price))
}
