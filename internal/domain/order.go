package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the shopper intends to pay. Nothing is charged.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCOD  PaymentMethod = "cod"
)

var paymentLabels = map[PaymentMethod]string{
	PaymentCard: "Credit / Debit Card",
	PaymentUPI:  "UPI",
	PaymentCOD:  "Cash on Delivery",
}

// Label returns the human readable payment method name, falling back to the
// raw value for unknown methods.
func (m PaymentMethod) Label() string {
	if label, ok := paymentLabels[m]; ok {
		return label
	}
	return string(m)
}

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentLabels[m]
	return ok
}

var pincodePattern = regexp.MustCompile(`^\d{5,6}$`)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// CheckoutForm is the shipping and payment information submitted at checkout.
type CheckoutForm struct {
	FullName      string        `json:"fullName"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	Pincode       string        `json:"pincode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Normalize trims the text fields and defaults the payment method to card.
func (f *CheckoutForm) Normalize() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Pincode = strings.TrimSpace(f.Pincode)
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCard
	}
}

// Validate normalizes the form and returns a *ValidationError listing every
// failing field, or nil.
func (f *CheckoutForm) Validate() error {
	f.Normalize()
	fields := map[string]string{}

	switch {
	case f.FullName == "":
		fields["fullName"] = "Full name is required"
	case len([]rune(f.FullName)) < 2:
		fields["fullName"] = "Name must be at least 2 characters"
	}

	switch {
	case f.Address == "":
		fields["address"] = "Address is required"
	case len([]rune(f.Address)) < 10:
		fields["address"] = "Please enter a complete address"
	}

	if f.City == "" {
		fields["city"] = "City is required"
	}

	switch {
	case f.Pincode == "":
		fields["pincode"] = "Pincode is required"
	case !pincodePattern.MatchString(f.Pincode):
		fields["pincode"] = "Please enter a valid pincode"
	}

	if !f.PaymentMethod.Valid() {
		fields["paymentMethod"] = "Please choose a payment method"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ShippingPolicy prices delivery: free strictly above the threshold,
// otherwise a flat fee.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	Fee           decimal.Decimal
}

// Cost returns the shipping charge for a subtotal.
func (p ShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// OrderConfirmation is what the shopper sees after a successful checkout.
type OrderConfirmation struct {
	OrderNumber   string          `json:"orderNumber"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ItemCount     int             `json:"itemCount"`
	PlacedAt      time.Time       `json:"placedAt"`
}

// OrderNumber derives a display order number from the placement time: "SV"
// followed by the last eight digits of the Unix millisecond timestamp.
func OrderNumber(at time.Time) string {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "SV" + ms
}

// OrderPlaced is the event emitted once an order is confirmed.
type OrderPlaced struct {
	SessionID    string            `json:"sessionId"`
	Confirmation OrderConfirmation `json:"confirmation"`
	Items        []CartLineItem    `json:"items"`
	ShipTo       CheckoutForm      `json:"shipTo"`
}
