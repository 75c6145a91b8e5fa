package service

import (
	"errors"

	"github.com/nexusmart/storefront/internal/catalog"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidProductID   = errors.New("invalid product id")
	ErrInvalidCredentials = errors.New("incorrect password")

	// Catalog sentinels, re-exported so callers need not import catalog.
	ErrProductNotFound = catalog.ErrProductNotFound
	ErrInvalidProduct  = catalog.ErrInvalidProduct
)
