package dto

import (
	"time"

	"github.com/mrops-br/shopverse-api/internal/domain"
)

// LoginRequest represents the demo login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest represents the demo signup form
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents the signed-in user
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// QuoteResponse represents the checkout price summary
type QuoteResponse struct {
	TotalItems int    `json:"totalItems"`
	Subtotal   string `json:"subtotal"`
	Shipping   string `json:"shipping"`
	Total      string `json:"total"`
}

// ToQuoteResponse converts a Quote to QuoteResponse
func ToQuoteResponse(q Quote, totalItems int) *QuoteResponse {
	return &QuoteResponse{
		TotalItems: totalItems,
		Subtotal:   Money(q.Subtotal),
		Shipping:   Money(q.Shipping),
		Total:      Money(q.Total),
	}
}

// OrderConfirmationResponse represents a placed order
type OrderConfirmationResponse struct {
	OrderNumber        string    `json:"orderNumber"`
	Subtotal           string    `json:"subtotal"`
	Shipping           string    `json:"shipping"`
	Total              string    `json:"total"`
	PaymentMethod      string    `json:"paymentMethod"`
	PaymentMethodLabel string    `json:"paymentMethodLabel"`
	ItemCount          int       `json:"itemCount"`
	PlacedAt           time.Time `json:"placedAt"`
}

// ToOrderConfirmationResponse converts a domain OrderConfirmation
func ToOrderConfirmationResponse(c *domain.OrderConfirmation) *OrderConfirmationResponse {
	return &OrderConfirmationResponse{
		OrderNumber:        c.OrderNumber,
		Subtotal:           Money(c.Subtotal),
		Shipping:           Money(c.Shipping),
		Total:              Money(c.Total),
		PaymentMethod:      string(c.PaymentMethod),
		PaymentMethodLabel: c.PaymentMethod.Label(),
		ItemCount:          c.ItemCount,
		PlacedAt:           c.PlacedAt,
	}
}
