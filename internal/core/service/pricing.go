package service

import (
	"github.com/niksmo/sneakers/internal/core/domain"
	"github.com/niksmo/sneakers/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.Pricer = Pricing{}

// Pricing derives shipping, tax and totals from a subtotal.
//
// The cart summary omits tax while the checkout includes it.
// Both are kept as is and marked with [domain.Totals.TaxIncluded].
type Pricing struct {
	rule domain.PricingRule
}

func NewPricing(rule domain.PricingRule) Pricing {
	return Pricing{rule}
}

func (p Pricing) CartSummary(subtotal decimal.Decimal) domain.Totals {
	t := p.base(subtotal)
	t.Total = subtotal.Add(t.Shipping)
	return t
}

func (p Pricing) CheckoutTotals(subtotal decimal.Decimal) domain.Totals {
	t := p.base(subtotal)
	t.Tax = subtotal.Mul(p.rule.TaxRate)
	t.Total = subtotal.Add(t.Shipping).Add(t.Tax)
	t.TaxIncluded = true
	return t
}

func (p Pricing) base(subtotal decimal.Decimal) domain.Totals {
	t := domain.Totals{
		Subtotal:              subtotal,
		Shipping:              p.shipping(subtotal),
		Tax:                   decimal.Zero,
		FreeShippingRemaining: decimal.Zero,
	}
	if subtotal.LessThan(p.rule.FreeShippingThreshold) {
		t.FreeShippingRemaining = p.rule.FreeShippingThreshold.Sub(subtotal)
	}
	return t
}

func (p Pricing) shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.rule.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.rule.FlatShippingFee
}
