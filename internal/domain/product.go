package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductID     = errors.New("product id is required")
	ErrInvalidProductName   = errors.New("product name is required")
	ErrInvalidProductPrice  = errors.New("product price must not be negative")
	ErrInvalidOriginalPrice = errors.New("product original price must not be below price")
	ErrInvalidRating        = errors.New("product rating must be between 0 and 5")
	ErrInvalidReviewCount   = errors.New("product review count must not be negative")
)

// MaxRating is the top of the rating scale.
const MaxRating = 5.0

// Product is catalog reference data. Stores keep copies of it but never
// change its fields.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	Image         string           `json:"image"`
	IsNew         bool             `json:"isNew"`
	IsSale        bool             `json:"isSale"`
	Description   string           `json:"description"`
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProductID
	}
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	if p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price) {
		return ErrInvalidOriginalPrice
	}
	if p.Rating < 0 || p.Rating > MaxRating {
		return ErrInvalidRating
	}
	if p.Reviews < 0 {
		return ErrInvalidReviewCount
	}
	return nil
}

// DiscountPercent returns the whole-number markdown from OriginalPrice to
// Price, or 0 when the product carries no original price.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.IsPositive() {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// ValidateProducts checks every product and reports the first failure along
// with the offending id.
func ValidateProducts(products []Product) error {
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return fmt.Errorf("product %q: %w", products[i].ID, err)
		}
	}
	return nil
}

// Equal reports whether two product records carry the same data. Decimal
// fields are compared by value.
func (p Product) Equal(o Product) bool {
	if p.ID != o.ID || p.Name != o.Name || p.Category != o.Category ||
		p.Rating != o.Rating || p.Reviews != o.Reviews || p.Image != o.Image ||
		p.IsNew != o.IsNew || p.IsSale != o.IsSale || p.Description != o.Description {
		return false
	}
	if !p.Price.Equal(o.Price) {
		return false
	}
	if (p.OriginalPrice == nil) != (o.OriginalPrice == nil) {
		return false
	}
	return p.OriginalPrice == nil || p.OriginalPrice.Equal(*o.OriginalPrice)
}
