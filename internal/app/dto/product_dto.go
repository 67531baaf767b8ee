package dto

import (
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductResponse represents the product response
type ProductResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Price           string  `json:"price"`
	OriginalPrice   *string `json:"originalPrice,omitempty"`
	DiscountPercent int     `json:"discountPercent,omitempty"`
	Rating          float64 `json:"rating"`
	Reviews         int     `json:"reviews"`
	Image           string  `json:"image"`
	IsNew           bool    `json:"isNew"`
	IsSale          bool    `json:"isSale"`
	Description     string  `json:"description"`
}

// CategoryResponse represents a category, optionally with its products
type CategoryResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Products    []*ProductResponse `json:"products,omitempty"`
}

// Money renders an amount with two decimal places for display.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Price:           Money(p.Price),
		DiscountPercent: p.DiscountPercent(),
		Rating:          p.Rating,
		Reviews:         p.Reviews,
		Image:           p.Image,
		IsNew:           p.IsNew,
		IsSale:          p.IsSale,
		Description:     p.Description,
	}
	if p.OriginalPrice != nil {
		orig := Money(*p.OriginalPrice)
		resp.OriginalPrice = &orig
	}
	return resp
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToProductValueList converts products held by value
func ToProductValueList(products []domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *domain.Category, products []*domain.Product) *CategoryResponse {
	resp := &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
	}
	if products != nil {
		resp.Products = ToProductResponseList(products)
	}
	return resp
}
