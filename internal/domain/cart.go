package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrDuplicateLine   = errors.New("duplicate line item")
	ErrEmptyCart       = errors.New("cart is empty")
)

// CartLineItem is one product in the cart together with how many of it the
// shopper wants. Quantity is always at least 1.
type CartLineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price times quantity without rounding.
func (l CartLineItem) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ValidateLineItems checks the shape invariants of a cart: positive
// quantities, valid products and one line per product id.
func ValidateLineItems(items []CartLineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("line %q: %w", item.Product.ID, ErrInvalidQuantity)
		}
		if err := item.Product.Validate(); err != nil {
			return fmt.Errorf("line %q: %w", item.Product.ID, err)
		}
		if _, dup := seen[item.Product.ID]; dup {
			return fmt.Errorf("line %q: %w", item.Product.ID, ErrDuplicateLine)
		}
		seen[item.Product.ID] = struct{}{}
	}
	return nil
}

// ValidateWishlist checks that every saved product is valid and appears once.
func ValidateWishlist(products []Product) error {
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return fmt.Errorf("wishlist %q: %w", products[i].ID, err)
		}
		if _, dup := seen[products[i].ID]; dup {
			return fmt.Errorf("wishlist %q: %w", products[i].ID, ErrDuplicateLine)
		}
		seen[products[i].ID] = struct{}{}
	}
	return nil
}
