package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// A PricingRule holds the flat shipping and tax settings.
type PricingRule struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPricingRule() PricingRule {
	return PricingRule{
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.RequireFromString("9.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Totals are derived from the cart subtotal.
//
// The cart summary never includes tax, the checkout always does.
type Totals struct {
	Subtotal              decimal.Decimal
	Shipping              decimal.Decimal
	Tax                   decimal.Decimal
	Total                 decimal.Decimal
	TaxIncluded           bool
	FreeShippingRemaining decimal.Decimal
}

func (t Totals) FreeShipping() bool {
	return t.Shipping.IsZero()
}

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentApplePay PaymentMethod = "applepay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentPayPal, PaymentApplePay:
		return true
	}
	return false
}

type CheckoutForm struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address       string
	City          string
	ZipCode       string
	Country       string
	PaymentMethod PaymentMethod
}

// A FormError lists the invalid checkout form fields.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *FormError) Unwrap() error {
	return ErrInvalidForm
}

// Validate returns a [*FormError] wrapping [ErrInvalidForm].
func (f CheckoutForm) Validate() error {
	var fields []string

	required := []struct {
		name  string
		value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"zip_code", f.ZipCode},
		{"country", f.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields = append(fields, r.name)
		}
	}

	if strings.TrimSpace(f.Email) != "" && !strings.Contains(f.Email, "@") {
		fields = append(fields, "email")
	}

	if !f.PaymentMethod.Valid() {
		fields = append(fields, "payment_method")
	}

	if len(fields) != 0 {
		return &FormError{Fields: fields}
	}
	return nil
}

type Order struct {
	ID            string
	Items         []LineItem
	Totals        Totals
	Customer      CheckoutForm
	PaymentMethod PaymentMethod
	PlacedAt      time.Time
}

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidSelection = errors.New("invalid product selection")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutInFlight = errors.New("checkout is already in progress")
	ErrInvalidForm      = errors.New("invalid checkout form")
)
