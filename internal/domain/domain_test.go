package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func TestProductValidate(t *testing.T) {
	valid := Product{ID: "p1", Name: "Lamp", Category: "home", Price: price("19.99"), Rating: 4.2, Reviews: 10}

	tests := []struct {
		name   string
		mutate func(p *Product)
		want   error
	}{
		{"valid", func(p *Product) {}, nil},
		{"missing id", func(p *Product) { p.ID = "" }, ErrInvalidProductID},
		{"missing name", func(p *Product) { p.Name = "" }, ErrInvalidProductName},
		{"negative price", func(p *Product) { p.Price = price("-1") }, ErrInvalidProductPrice},
		{"free product", func(p *Product) { p.Price = decimal.Zero }, nil},
		{"original below price", func(p *Product) { p.OriginalPrice = pricePtr("10") }, ErrInvalidOriginalPrice},
		{"original equals price", func(p *Product) { p.OriginalPrice = pricePtr("19.99") }, nil},
		{"rating above scale", func(p *Product) { p.Rating = 5.1 }, ErrInvalidRating},
		{"negative rating", func(p *Product) { p.Rating = -0.5 }, ErrInvalidRating},
		{"negative reviews", func(p *Product) { p.Reviews = -1 }, ErrInvalidReviewCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProductDiscountPercent(t *testing.T) {
	p := Product{Price: price("79.99"), OriginalPrice: pricePtr("99.99")}
	assert.Equal(t, 20, p.DiscountPercent())

	p.OriginalPrice = nil
	assert.Equal(t, 0, p.DiscountPercent())

	p.OriginalPrice = pricePtr("0")
	assert.Equal(t, 0, p.DiscountPercent())
}

func TestCartLineItemLineTotal(t *testing.T) {
	line := CartLineItem{Product: Product{Price: price("5.55")}, Quantity: 3}
	assert.True(t, price("16.65").Equal(line.LineTotal()))
}

func TestValidateLineItems(t *testing.T) {
	p1 := Product{ID: "p1", Name: "One", Price: price("1")}
	p2 := Product{ID: "p2", Name: "Two", Price: price("2")}

	assert.NoError(t, ValidateLineItems(nil))
	assert.NoError(t, ValidateLineItems([]CartLineItem{{Product: p1, Quantity: 1}, {Product: p2, Quantity: 4}}))
	assert.ErrorIs(t, ValidateLineItems([]CartLineItem{{Product: p1, Quantity: 0}}), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateLineItems([]CartLineItem{{Product: p1, Quantity: 1}, {Product: p1, Quantity: 2}}), ErrDuplicateLine)
	assert.ErrorIs(t, ValidateLineItems([]CartLineItem{{Product: Product{Name: "x"}, Quantity: 1}}), ErrInvalidProductID)
}

func TestValidateWishlist(t *testing.T) {
	p1 := Product{ID: "p1", Name: "One", Price: price("1")}
	assert.NoError(t, ValidateWishlist([]Product{p1}))
	assert.ErrorIs(t, ValidateWishlist([]Product{p1, p1}), ErrDuplicateLine)
}

func TestNewLoginUser(t *testing.T) {
	u, err := NewLoginUser(" jane@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	_, err = NewLoginUser("jane@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewLoginUser("", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewSignupUser(t *testing.T) {
	u, err := NewSignupUser("Jane Doe", "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)

	_, err = NewSignupUser("  ", "jane@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCheckoutFormValidate(t *testing.T) {
	t.Run("valid form defaults to card", func(t *testing.T) {
		f := CheckoutForm{FullName: " Jo ", Address: "123 Main Street", City: "Pune", Pincode: "411001"}
		require.NoError(t, f.Validate())
		assert.Equal(t, PaymentCard, f.PaymentMethod)
		assert.Equal(t, "Jo", f.FullName)
	})

	t.Run("empty form reports every field", func(t *testing.T) {
		f := CheckoutForm{PaymentMethod: "cheque"}
		err := f.Validate()

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Full name is required", verr.Fields["fullName"])
		assert.Equal(t, "Address is required", verr.Fields["address"])
		assert.Equal(t, "City is required", verr.Fields["city"])
		assert.Equal(t, "Pincode is required", verr.Fields["pincode"])
		assert.Contains(t, verr.Fields, "paymentMethod")
	})

	t.Run("length and format rules", func(t *testing.T) {
		f := CheckoutForm{FullName: "J", Address: "short", City: "Pune", Pincode: "12ab5", PaymentMethod: PaymentUPI}
		err := f.Validate()

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Name must be at least 2 characters", verr.Fields["fullName"])
		assert.Equal(t, "Please enter a complete address", verr.Fields["address"])
		assert.Equal(t, "Please enter a valid pincode", verr.Fields["pincode"])
		assert.NotContains(t, verr.Fields, "city")
		assert.Equal(t, "validation failed: address, fullName, pincode", verr.Error())
	})

	t.Run("pincode accepts five and six digits only", func(t *testing.T) {
		for pin, ok := range map[string]bool{"10001": true, "411001": true, "1234": false, "1234567": false} {
			f := CheckoutForm{FullName: "Jo", Address: "123 Main Street", City: "Pune", Pincode: pin}
			assert.Equal(t, ok, f.Validate() == nil, pin)
		}
	})
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, "Cash on Delivery", PaymentCOD.Label())
	assert.Equal(t, "paypal", PaymentMethod("paypal").Label())
	assert.False(t, PaymentMethod("paypal").Valid())
}

func TestShippingPolicyCost(t *testing.T) {
	policy := ShippingPolicy{FreeThreshold: price("50"), Fee: price("9.99")}

	assert.True(t, price("9.99").Equal(policy.Cost(price("50"))))
	assert.True(t, decimal.Zero.Equal(policy.Cost(price("50.01"))))
	assert.True(t, price("9.99").Equal(policy.Cost(decimal.Zero)))
}

func TestOrderNumber(t *testing.T) {
	at := time.UnixMilli(1718000123456)
	assert.Equal(t, "SV00123456", OrderNumber(at))
}
