// Package pricing holds the order amount calculations shared by checkout,
// sales processing, billing and payments. Every surface goes through these
// functions so totals cannot drift between screens.
package pricing

import "math"

// TaxRate is the sales tax applied to the discounted subtotal when the tax
// toggle is on.
const TaxRate = 0.12

// PaymentType distinguishes cash orders from credit (installment) orders.
type PaymentType string

const (
	PaymentCash   PaymentType = "Cash"
	PaymentCredit PaymentType = "Credit"
)

// Line is one product line on an order.
type Line struct {
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64 // signed: a negative value acts as an add-on
	OutOfStock      bool
}

// Gross returns quantity times unit price.
func (l Line) Gross() float64 {
	return l.Quantity * l.UnitPrice
}

// Net returns the gross amount after the line discount.
func (l Line) Net() float64 {
	return l.Gross() * (1 - l.DiscountPercent/100)
}

// SubtotalPolicy controls which lines participate in the subtotal. Delivery
// receipts exclude out-of-stock lines; checkout does not.
type SubtotalPolicy struct {
	ExcludeOutOfStock bool
}

// Totals aggregates the line reductions.
type Totals struct {
	Subtotal      float64
	TotalDiscount float64
	AfterDiscount float64
}

// Summarize reduces order lines to subtotal, aggregate discount and the
// post-discount subtotal. Zero-valued quantity or price contributes nothing.
// Stored discount percents are trusted as-is; clamping belongs at the data
// entry boundary, not here.
func Summarize(lines []Line, policy SubtotalPolicy) Totals {
	var t Totals
	for _, l := range lines {
		if policy.ExcludeOutOfStock && l.OutOfStock {
			continue
		}
		gross := l.Gross()
		t.Subtotal += gross
		t.TotalDiscount += gross * (l.DiscountPercent / 100)
	}
	t.AfterDiscount = t.Subtotal - t.TotalDiscount
	return t
}

// termInterest maps credit term length in months to the default interest
// percent.
var termInterest = map[int]float64{
	1:  2,
	3:  6,
	6:  12,
	12: 24,
}

// InterestPercentForTerms returns the default interest percent for a credit
// term length. Lengths outside the table scale linearly from the 12-month
// rate and are capped at 30 percent.
func InterestPercentForTerms(termsMonths int) float64 {
	if p, ok := termInterest[termsMonths]; ok {
		return p
	}
	if termsMonths <= 0 {
		return 0
	}
	return math.Min(30, math.Round(float64(termsMonths)/12*24))
}

// QuoteInput carries everything needed to derive tax, interest and the grand
// total for an order.
type QuoteInput struct {
	AfterDiscount float64
	TaxEnabled    bool
	PaymentType   PaymentType
	TermsMonths   int
	// InterestOverride replaces the term-table percent when set. Only the
	// admin sales flow may set it; checkout never does.
	InterestOverride *float64
	ShippingFee      float64
}

// Quote is the computed tax/interest breakdown.
type Quote struct {
	SalesTax        float64
	InterestPercent float64
	InterestAmount  float64
	GrandTotal      float64
}

// Compute derives sales tax, interest and the grand total. Cash orders carry
// zero interest regardless of any stored term or interest fields.
func Compute(in QuoteInput) Quote {
	var q Quote
	if in.TaxEnabled {
		q.SalesTax = in.AfterDiscount * TaxRate
	}
	if in.PaymentType == PaymentCredit {
		q.InterestPercent = InterestPercentForTerms(in.TermsMonths)
		if in.InterestOverride != nil {
			q.InterestPercent = *in.InterestOverride
		}
		q.InterestAmount = (in.AfterDiscount + q.SalesTax) * q.InterestPercent / 100
	}
	q.GrandTotal = in.AfterDiscount + q.SalesTax + q.InterestAmount + in.ShippingFee
	return q
}

// Round2 rounds a currency amount to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
