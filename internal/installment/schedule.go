// Package installment builds and maintains the per-term payment schedule for
// credit orders and validates payment amounts against it.
package installment

import (
	"errors"
	"math"
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

// TermStatus is the lifecycle of a single installment term.
type TermStatus string

const (
	StatusPending TermStatus = "pending"
	StatusPaid    TermStatus = "paid"
)

// Term is one monthly installment row.
type Term struct {
	TermNo     int
	DueDate    time.Time
	AmountDue  float64
	AmountPaid float64
	Status     TermStatus
}

// Unpaid reports whether the term still owes money.
func (t Term) Unpaid() bool {
	return t.Status != StatusPaid
}

var (
	ErrInvalidTerms      = errors.New("terms must be at least one month")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrNotTermMultiple rejects credit payments that are not an exact
	// multiple of the current unpaid term amount.
	ErrNotTermMultiple = errors.New("amount is not an exact multiple of the term amount")
	// ErrExceedsSchedule rejects credit payments covering more terms than
	// remain unpaid.
	ErrExceedsSchedule = errors.New("amount exceeds the remaining installments")
)

// centTolerance absorbs float drift when comparing currency amounts.
const centTolerance = 0.005

// Build produces the schedule for a completed credit order. Each term owes
// Round2(grandTotal/terms); the last term absorbs the rounding remainder so
// the schedule sums to the grand total exactly. Due dates advance one
// calendar month from firstDue.
func Build(grandTotal float64, termsMonths int, firstDue time.Time) ([]Term, error) {
	if termsMonths < 1 {
		return nil, ErrInvalidTerms
	}
	per := pricing.Round2(grandTotal / float64(termsMonths))
	terms := make([]Term, termsMonths)
	for i := range terms {
		terms[i] = Term{
			TermNo:    i + 1,
			DueDate:   firstDue.AddDate(0, i, 0),
			AmountDue: per,
			Status:    StatusPending,
		}
	}
	last := &terms[termsMonths-1]
	last.AmountDue = pricing.Round2(pricing.Round2(grandTotal) - per*float64(termsMonths-1))
	return terms, nil
}

// Apply distributes a received amount greedily across the earliest unpaid
// terms, carrying any remainder forward. A term flips to paid once its
// AmountPaid covers its AmountDue. Returns the number of terms the payment
// fully covered, counted from the unpaid base.
func Apply(terms []Term, amount float64) int {
	covered := 0
	remaining := amount
	for i := range terms {
		t := &terms[i]
		if !t.Unpaid() {
			continue
		}
		if remaining <= centTolerance {
			break
		}
		owed := t.AmountDue - t.AmountPaid
		pay := math.Min(owed, remaining)
		t.AmountPaid = pricing.Round2(t.AmountPaid + pay)
		remaining -= pay
		if t.AmountPaid >= t.AmountDue-centTolerance {
			t.Status = StatusPaid
			covered++
		}
	}
	return covered
}

// NextUnpaid returns the earliest term still owing, or nil when the schedule
// is settled.
func NextUnpaid(terms []Term) *Term {
	for i := range terms {
		if terms[i].Unpaid() {
			return &terms[i]
		}
	}
	return nil
}

// RemainingUnpaidCount counts terms not yet fully paid.
func RemainingUnpaidCount(terms []Term) int {
	n := 0
	for _, t := range terms {
		if t.Unpaid() {
			n++
		}
	}
	return n
}

// Outstanding sums the unpaid portion across all terms.
func Outstanding(terms []Term) float64 {
	var total float64
	for _, t := range terms {
		if t.Unpaid() {
			total += t.AmountDue - t.AmountPaid
		}
	}
	return pricing.Round2(total)
}

// ValidateCreditAmount checks a submitted credit payment: it must be an exact
// positive multiple of the current unpaid term amount, for no more terms than
// remain, or exactly the remaining balance. Comparison happens in cents.
func ValidateCreditAmount(amount, currentTermAmount float64, remainingUnpaid int, remainingBalance float64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if math.Abs(amount-remainingBalance) <= centTolerance {
		return nil
	}
	perCents := int64(math.Round(currentTermAmount * 100))
	if perCents <= 0 {
		return ErrExceedsSchedule
	}
	amountCents := int64(math.Round(amount * 100))
	if amountCents%perCents != 0 {
		return ErrNotTermMultiple
	}
	if k := amountCents / perCents; k > int64(remainingUnpaid) {
		return ErrExceedsSchedule
	}
	return nil
}

// ClampCashAmount caps a cash payment at the remaining balance. Overpayment
// is clamped with a notice rather than rejected.
func ClampCashAmount(amount, remainingBalance float64) (float64, bool) {
	if amount > remainingBalance {
		return remainingBalance, true
	}
	return amount, false
}
