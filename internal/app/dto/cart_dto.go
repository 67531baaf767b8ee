package dto

import (
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/shopspring/decimal"
)

// AddToCartRequest represents the request to add a product to the cart.
// A missing quantity means one unit.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// UpdateQuantityRequest represents the request to set a line quantity.
// Quantity is required; zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CartLineResponse represents one cart line
type CartLineResponse struct {
	Product   *ProductResponse `json:"product"`
	Quantity  int              `json:"quantity"`
	LineTotal string           `json:"lineTotal"`
}

// CartResponse represents the cart with its derived totals
type CartResponse struct {
	Items                 []*CartLineResponse `json:"items"`
	TotalItems            int                 `json:"totalItems"`
	Subtotal              string              `json:"subtotal"`
	Shipping              string              `json:"shipping"`
	Total                 string              `json:"total"`
	FreeShippingRemainder string              `json:"freeShippingRemainder,omitempty"`
}

// Quote is the price breakdown of a cart. Remainder is how much more the
// shopper must spend for free shipping, zero once shipping is free.
type Quote struct {
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	Remainder decimal.Decimal
}

// QuoteFor prices a subtotal under a shipping policy.
func QuoteFor(subtotal decimal.Decimal, policy domain.ShippingPolicy) Quote {
	shipping := policy.Cost(subtotal)
	q := Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
	if shipping.IsPositive() {
		q.Remainder = policy.FreeThreshold.Sub(subtotal)
	}
	return q
}

// ToCartResponse converts cart lines and their quote to a CartResponse
func ToCartResponse(items []domain.CartLineItem, q Quote) *CartResponse {
	lines := make([]*CartLineResponse, len(items))
	total := 0
	for i := range items {
		lines[i] = &CartLineResponse{
			Product:   ToProductResponse(&items[i].Product),
			Quantity:  items[i].Quantity,
			LineTotal: Money(items[i].LineTotal()),
		}
		total += items[i].Quantity
	}

	resp := &CartResponse{
		Items:      lines,
		TotalItems: total,
		Subtotal:   Money(q.Subtotal),
		Shipping:   Money(q.Shipping),
		Total:      Money(q.Total),
	}
	if q.Remainder.IsPositive() {
		resp.FreeShippingRemainder = Money(q.Remainder)
	}
	return resp
}

// WishlistResponse represents the saved products
type WishlistResponse struct {
	Items []*ProductResponse `json:"items"`
	Count int                `json:"count"`
}

// WishlistStatusResponse reports whether one product is saved
type WishlistStatusResponse struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
}

// ToWishlistResponse converts saved products to a WishlistResponse
func ToWishlistResponse(products []domain.Product) *WishlistResponse {
	return &WishlistResponse{
		Items: ToProductValueList(products),
		Count: len(products),
	}
}
