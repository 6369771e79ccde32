package store

import (
	"fmt"
	"net/http"

	apperrors "github.com/frenow/rocketshoes-cart/pkg/errors"
)

// Sentinels for errors.Is at call sites.
var (
	// ErrStockInsufficient: the requested quantity exceeds the stock.
	ErrStockInsufficient = apperrors.ErrInsufficientStock
	// ErrNotInCart: the product is not in the cart. It also matches
	// apperrors.ErrNotFound.
	ErrNotInCart = fmt.Errorf("product not in cart: %w", apperrors.ErrNotFound)
	// ErrUpstream: a remote lookup failed, returned unusable data, or the
	// snapshot could not be persisted.
	ErrUpstream = apperrors.ErrUpstream
)

func notInCart(productID int) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("product %d is not in the cart", productID),
		Status:  http.StatusNotFound,
		Err:     ErrNotInCart,
	}
}
