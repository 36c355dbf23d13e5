package shared

import (
	"strings"

	"github.com/google/uuid"
)

func randomToken(n int) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(raw) {
		n = len(raw)
	}
	return raw[:n]
}

// NewTxnCode returns the transaction code printed on orders and receipts,
// e.g. TXN-9F2A41C7D0.
func NewTxnCode() string {
	return "TXN-" + randomToken(10)
}

// NewCustomerCode returns a short customer account code.
func NewCustomerCode() string {
	return "CUST-" + randomToken(8)
}

// NewPaymentReference returns the reference number handed back to a customer
// when a payment is submitted. Full UUID so references stay unguessable.
func NewPaymentReference() string {
	return "PAY-" + uuid.NewString()
}
