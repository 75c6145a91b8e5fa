package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService(t *testing.T) {
	cat := newMockCatalog()
	for i := int64(1); i <= 6; i++ {
		cat.products[i] = product(i, "P", "1.00")
	}
	svc := NewProductService(cat, cat)
	ctx := context.Background()

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, FeaturedLimit)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	p, err := svc.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)

	_, err = svc.Get(ctx, "77")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrInvalidProductID)
}
