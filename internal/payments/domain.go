package payments

import (
	"time"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/installment"
	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/pricing"
)

// Method is how the customer pays.
type Method string

const (
	MethodCash   Method = "cash"
	MethodCheque Method = "cheque"
)

// Status is the verification lifecycle of a submitted payment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReceived Status = "received"
	StatusRejected Status = "rejected"
)

// CashPendingCountsAsPaid names the collection policy: a pending cash payment
// already sits in the cashier's drawer, so it reduces the remaining balance
// immediately. A pending cheque does not count until it clears.
const CashPendingCountsAsPaid = true

// Payment model. Received and rejected payments are immutable.
type Payment struct {
	ID             int64      `json:"id"`
	Reference      string     `json:"reference"`
	OrderID        int64      `json:"order_id"`
	Amount         float64    `json:"amount"`
	Method         Method     `json:"method"`
	ChequeNumber   string     `json:"cheque_number,omitempty"`
	BankName       string     `json:"bank_name,omitempty"`
	ChequeDate     *time.Time `json:"cheque_date,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Status         Status     `json:"status"`
	Notice         string     `json:"notice,omitempty"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	VerifiedBy     string     `json:"verified_by,omitempty"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
}

// SubmitPaymentInput is the customer-facing submission.
type SubmitPaymentInput struct {
	OrderID        int64      `json:"order_id" validate:"required"`
	Amount         float64    `json:"amount" validate:"gt=0"`
	Method         Method     `json:"method" validate:"required,oneof=cash cheque"`
	ChequeNumber   string     `json:"cheque_number"`
	BankName       string     `json:"bank_name"`
	ChequeDate     *time.Time `json:"cheque_date"`
	ImageURL       string     `json:"image_url"`
	IdempotencyKey string     `json:"-"`
}

// SubmitResult carries the stored payment plus any adjustment notice, e.g.
// when a cash amount was clamped to the remaining balance.
type SubmitResult struct {
	Payment Payment `json:"payment"`
	Notice  string  `json:"notice,omitempty"`
}

// OrderSnapshot is the slice of order state payments need. Supplied by the
// orders module through OrdersPort.
type OrderSnapshot struct {
	OrderID       int64
	GrandTotal    float64
	PaymentType   pricing.PaymentType
	TermsMonths   int
	PerTermAmount float64
	Completed     bool
}

// ScheduleView is the customer-facing schedule with balance summary.
type ScheduleView struct {
	OrderID          int64              `json:"order_id"`
	Terms            []installment.Term `json:"terms"`
	RemainingBalance float64            `json:"remaining_balance"`
	NextDueTermNo    int                `json:"next_due_term_no,omitempty"`
}
